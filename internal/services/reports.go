package services

import (
	"math"
	"sort"
	"time"

	"khosta-backend-go/internal/models"
)

type Bucket struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Summary is the aggregate view of the record collection.
type Summary struct {
	GeneratedAt     time.Time `json:"generatedAt"`
	Total           int       `json:"total"`
	Eligible        int       `json:"eligible"`
	ByStatus        []Bucket  `json:"byStatus"`
	ByCrime         []Bucket  `json:"byCrime"`
	ByGender        []Bucket  `json:"byGender"`
	AverageSentence float64   `json:"averageSentence"`
	AverageAge      float64   `json:"averageAge"`
}

// Aggregate groups the records that pass validation at now. Records that
// fail are counted in Total but excluded from every breakdown and average.
func Aggregate(records []models.Record, now time.Time) Summary {
	eligible := make([]models.Record, 0, len(records))
	for _, r := range records {
		if ValidateStored(r, now).OK() {
			eligible = append(eligible, r)
		}
	}

	statusCounts := map[models.Status]int{}
	genderCounts := map[models.Gender]int{}
	crimeCounts := map[string]int{}
	sentenceSum := 0
	ageSum := 0
	today := civilDate(now)
	for _, r := range eligible {
		statusCounts[r.Status]++
		genderCounts[r.Gender]++
		crimeCounts[r.CrimeLabel()]++
		sentenceSum += r.SentenceYears
		ageSum += AgeAt(r.BirthDate, today)
	}

	byStatus := make([]Bucket, 0, len(models.Statuses))
	for _, status := range models.Statuses {
		byStatus = append(byStatus, Bucket{Label: string(status), Count: statusCounts[status]})
	}
	byGender := make([]Bucket, 0, len(models.Genders))
	for _, gender := range models.Genders {
		byGender = append(byGender, Bucket{Label: string(gender), Count: genderCounts[gender]})
	}
	byCrime := make([]Bucket, 0, len(crimeCounts))
	for label, count := range crimeCounts {
		byCrime = append(byCrime, Bucket{Label: label, Count: count})
	}
	sort.Slice(byCrime, func(i, j int) bool {
		if byCrime[i].Count != byCrime[j].Count {
			return byCrime[i].Count > byCrime[j].Count
		}
		return byCrime[i].Label < byCrime[j].Label
	})

	total := len(eligible)
	applyPercentages(byStatus, total)
	applyPercentages(byGender, total)
	applyPercentages(byCrime, total)

	summary := Summary{
		GeneratedAt: now.UTC(),
		Total:       len(records),
		Eligible:    total,
		ByStatus:    byStatus,
		ByCrime:     byCrime,
		ByGender:    byGender,
	}
	if total > 0 {
		summary.AverageSentence = roundTenth(float64(sentenceSum) / float64(total))
		summary.AverageAge = roundTenth(float64(ageSum) / float64(total))
	}
	return summary
}

// applyPercentages fills Percent with one decimal using the largest
// remainder method, so the buckets of a non-empty set sum to exactly 100.0.
func applyPercentages(buckets []Bucket, total int) {
	if total == 0 {
		return
	}
	type remainder struct {
		index int
		frac  int64
	}
	tenths := make([]int64, len(buckets))
	rems := make([]remainder, 0, len(buckets))
	var assigned int64
	for i, b := range buckets {
		scaled := int64(b.Count) * 1000
		tenths[i] = scaled / int64(total)
		assigned += tenths[i]
		rems = append(rems, remainder{index: i, frac: scaled % int64(total)})
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for k := 0; assigned < 1000 && k < len(rems); k++ {
		tenths[rems[k].index]++
		assigned++
	}
	for i := range buckets {
		buckets[i].Percent = float64(tenths[i]) / 10
	}
}

func roundTenth(value float64) float64 {
	return math.Round(value*10) / 10
}
