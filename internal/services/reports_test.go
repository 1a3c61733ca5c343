package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khosta-backend-go/internal/models"
)

func sampleRecord(id string, status models.Status, gender models.Gender, crime models.Crime, sentence int) models.Record {
	return models.Record{
		ID:            id,
		FullName:      "Record " + id,
		BirthDate:     date(1990, 1, 1),
		Gender:        gender,
		ProcessNumber: "P-" + id,
		Crime:         crime,
		EntryDate:     date(2020, 1, 1),
		SentenceYears: sentence,
		Status:        status,
	}
}

func percentSum(buckets []Bucket) float64 {
	var tenths int
	for _, b := range buckets {
		tenths += int(b.Percent*10 + 0.5)
	}
	return float64(tenths) / 10
}

func TestAggregateBreakdowns(t *testing.T) {
	records := []models.Record{
		sampleRecord("1", models.StatusIncarcerated, models.GenderMale, models.CrimeRobbery, 4),
		sampleRecord("2", models.StatusIncarcerated, models.GenderFemale, models.CrimeTheft, 6),
		sampleRecord("3", models.StatusParole, models.GenderMale, models.CrimeRobbery, 8),
	}
	summary := Aggregate(records, fixedNow)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Eligible)
	require.Len(t, summary.ByStatus, len(models.Statuses))
	assert.Equal(t, Bucket{Label: "incarcerated", Count: 2, Percent: 66.7}, summary.ByStatus[0])
	assert.Equal(t, Bucket{Label: "parole", Count: 1, Percent: 33.3}, summary.ByStatus[1])
	assert.Equal(t, 0, summary.ByStatus[3].Count)

	require.Len(t, summary.ByCrime, 2)
	assert.Equal(t, "robbery", summary.ByCrime[0].Label)
	assert.Equal(t, "theft", summary.ByCrime[1].Label)

	assert.Equal(t, 6.0, summary.AverageSentence)
	assert.Equal(t, 34.0, summary.AverageAge)
	assert.Equal(t, 100.0, percentSum(summary.ByStatus))
	assert.Equal(t, 100.0, percentSum(summary.ByGender))
	assert.Equal(t, 100.0, percentSum(summary.ByCrime))
}

func TestAggregateUsesCrimeOverride(t *testing.T) {
	other := sampleRecord("1", models.StatusIncarcerated, models.GenderMale, models.CrimeOther, 3)
	other.OtherCrime = "Fraud"
	summary := Aggregate([]models.Record{other}, fixedNow)
	require.Len(t, summary.ByCrime, 1)
	assert.Equal(t, "Fraud", summary.ByCrime[0].Label)
	assert.Equal(t, 100.0, summary.ByCrime[0].Percent)
}

func TestAggregateSkipsInvalidRecords(t *testing.T) {
	bad := sampleRecord("bad", models.StatusIncarcerated, models.GenderMale, models.CrimeTheft, 0)
	good := sampleRecord("good", models.StatusReleased, models.GenderFemale, models.CrimeTheft, 2)
	summary := Aggregate([]models.Record{bad, good}, fixedNow)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Eligible)
	assert.Equal(t, 2.0, summary.AverageSentence)
	assert.Equal(t, 100.0, summary.ByStatus[3].Percent)
}

func TestAggregateEmpty(t *testing.T) {
	summary := Aggregate(nil, fixedNow)
	assert.Zero(t, summary.Eligible)
	assert.Zero(t, summary.AverageAge)
	assert.Empty(t, summary.ByCrime)
	for _, b := range summary.ByStatus {
		assert.Zero(t, b.Percent)
	}
}

func TestApplyPercentagesLargestRemainder(t *testing.T) {
	buckets := []Bucket{{Count: 1}, {Count: 1}, {Count: 1}, {Count: 4}}
	applyPercentages(buckets, 7)
	assert.Equal(t, 100.0, percentSum(buckets))
	for _, b := range buckets {
		assert.GreaterOrEqual(t, b.Percent, 14.2)
	}
}
