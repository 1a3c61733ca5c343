package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khosta-backend-go/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReleaseDate(t *testing.T) {
	assert.Equal(t, date(2025, 1, 10), ReleaseDate(date(2020, 1, 10), 5))
	assert.Equal(t, date(2025, 3, 1), ReleaseDate(date(2024, 2, 29), 1))
}

func TestDaysRemaining(t *testing.T) {
	now := date(2024, 11, 10)
	assert.Equal(t, 61, DaysRemaining(date(2025, 1, 10), now))
	assert.Equal(t, 0, DaysRemaining(now, now))
	assert.Equal(t, -1, DaysRemaining(date(2024, 11, 9), now))
	assert.Equal(t, 60, DaysRemaining(date(2025, 1, 10), now.Add(12*time.Hour)))
}

func TestIsEndingSoon(t *testing.T) {
	now := date(2024, 11, 10)
	record := models.Record{Status: models.StatusIncarcerated, EntryDate: date(2020, 1, 10), SentenceYears: 5}
	assert.True(t, IsEndingSoon(record, now))

	record.Status = models.StatusParole
	assert.False(t, IsEndingSoon(record, now))

	far := models.Record{Status: models.StatusIncarcerated, EntryDate: date(2020, 1, 10), SentenceYears: 10}
	assert.False(t, IsEndingSoon(far, now))

	boundary := models.Record{Status: models.StatusIncarcerated, EntryDate: date(2020, 5, 10), SentenceYears: 5}
	assert.True(t, IsEndingSoon(boundary, now))
	boundary.EntryDate = date(2020, 5, 11)
	assert.False(t, IsEndingSoon(boundary, now))
}

func TestEndingSoonOrdersByRelease(t *testing.T) {
	now := date(2024, 11, 10)
	records := []models.Record{
		{ID: "late", Status: models.StatusIncarcerated, EntryDate: date(2020, 3, 1), SentenceYears: 5},
		{ID: "free", Status: models.StatusReleased, EntryDate: date(2020, 1, 1), SentenceYears: 5},
		{ID: "overdue", Status: models.StatusIncarcerated, EntryDate: date(2019, 1, 1), SentenceYears: 5},
		{ID: "early", Status: models.StatusIncarcerated, EntryDate: date(2020, 1, 10), SentenceYears: 5},
	}
	items := EndingSoon(records, now)
	require.Len(t, items, 3)
	assert.Equal(t, "overdue", items[0].Record.ID)
	assert.Negative(t, items[0].DaysRemaining)
	assert.Equal(t, "early", items[1].Record.ID)
	assert.Equal(t, 61, items[1].DaysRemaining)
	assert.Equal(t, "late", items[2].Record.ID)
}

func TestEndingSoonEmpty(t *testing.T) {
	items := EndingSoon(nil, date(2024, 11, 10))
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
