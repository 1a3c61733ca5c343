package services

import (
	"math"
	"sort"
	"time"

	"khosta-backend-go/internal/models"
)

// EndingSoonMonths is how far ahead of now a release still counts as "ending soon".
const EndingSoonMonths = 6

type EndingSoonItem struct {
	Record        models.Record
	ReleaseDate   time.Time
	DaysRemaining int
}

// ReleaseDate adds the sentence in whole calendar years to the entry date.
// Day overflow normalises the way time.AddDate does (29 Feb + 1y = 1 Mar).
func ReleaseDate(entry time.Time, sentenceYears int) time.Time {
	return entry.AddDate(sentenceYears, 0, 0)
}

// DaysRemaining is floor((release - now) / 24h); negative once overdue.
func DaysRemaining(release, now time.Time) int {
	return int(math.Floor(release.Sub(now).Hours() / 24))
}

func IsEndingSoon(r models.Record, now time.Time) bool {
	if r.Status != models.StatusIncarcerated {
		return false
	}
	release := ReleaseDate(r.EntryDate, r.SentenceYears)
	return !release.After(now.AddDate(0, EndingSoonMonths, 0))
}

// EndingSoon filters incarcerated records released within the window,
// ordered by ascending release date.
func EndingSoon(records []models.Record, now time.Time) []EndingSoonItem {
	items := make([]EndingSoonItem, 0)
	for _, r := range records {
		if !IsEndingSoon(r, now) {
			continue
		}
		release := ReleaseDate(r.EntryDate, r.SentenceYears)
		items = append(items, EndingSoonItem{
			Record:        r,
			ReleaseDate:   release,
			DaysRemaining: DaysRemaining(release, now),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ReleaseDate.Before(items[j].ReleaseDate)
	})
	return items
}
