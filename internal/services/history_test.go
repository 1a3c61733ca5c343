package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khosta-backend-go/internal/models"
)

func TestTrackStatusFirstEntry(t *testing.T) {
	record := models.Record{Status: models.StatusIncarcerated}
	now := time.Date(2024, 11, 10, 9, 0, 0, 0, time.UTC)

	require.True(t, TrackStatus(&record, now))
	require.Len(t, record.History, 1)
	assert.Equal(t, now, record.History[0].Date)
	assert.Equal(t, models.StatusIncarcerated, record.History[0].Status)
	assert.Equal(t, "Status changed to Incarcerated", record.History[0].Details)
}

func TestTrackStatusOnlyOnChange(t *testing.T) {
	record := models.Record{Status: models.StatusIncarcerated}
	now := time.Date(2024, 11, 10, 9, 0, 0, 0, time.UTC)
	TrackStatus(&record, now)

	assert.False(t, TrackStatus(&record, now.Add(time.Hour)))
	assert.Len(t, record.History, 1)

	record.Status = models.StatusParole
	assert.True(t, TrackStatus(&record, now.Add(2*time.Hour)))
	require.Len(t, record.History, 2)
	assert.Equal(t, "Status changed to Parole", record.History[1].Details)

	record.Status = models.StatusIncarcerated
	assert.True(t, TrackStatus(&record, now.Add(3*time.Hour)))
	assert.Len(t, record.History, 3)
}
