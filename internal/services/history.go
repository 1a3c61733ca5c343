package services

import (
	"time"

	"khosta-backend-go/internal/models"
)

// TrackStatus appends a history entry when the record's status differs from
// the last recorded one. It reports whether an entry was added.
func TrackStatus(r *models.Record, now time.Time) bool {
	var last models.Status
	if n := len(r.History); n > 0 {
		last = r.History[n-1].Status
	}
	if r.Status == last {
		return false
	}
	r.History = append(r.History, models.StatusHistoryEntry{
		Date:    now.UTC(),
		Status:  r.Status,
		Details: "Status changed to " + r.Status.Label(),
	})
	return true
}
