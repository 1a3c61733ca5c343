package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"khosta-backend-go/internal/models"
	"khosta-backend-go/internal/store"
)

// RecentLimit is how many records the dashboard lists as newest.
const RecentLimit = 5

// ChangeNotifier is told after every successful mutation.
type ChangeNotifier interface {
	Notify()
}

type RecordService struct {
	Store    store.Store
	Now      func() time.Time
	Notifier ChangeNotifier
	Logger   *zap.Logger
}

// RecordPatch carries the fields an edit supplies; nil means unchanged.
type RecordPatch struct {
	FullName      *string
	BirthDate     *string
	Gender        *string
	ProcessNumber *string
	Crime         *string
	OtherCrime    *string
	EntryDate     *string
	Sentence      *string
	Status        *string
	Photo         *string
}

func (p RecordPatch) Apply(d RecordDraft) RecordDraft {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&d.FullName, p.FullName)
	set(&d.BirthDate, p.BirthDate)
	set(&d.Gender, p.Gender)
	set(&d.ProcessNumber, p.ProcessNumber)
	set(&d.Crime, p.Crime)
	set(&d.OtherCrime, p.OtherCrime)
	set(&d.EntryDate, p.EntryDate)
	set(&d.Sentence, p.Sentence)
	set(&d.Status, p.Status)
	set(&d.Photo, p.Photo)
	return d
}

type RecordFilter struct {
	Query  string
	Status string
	Crime  string
	Entry  DateRange
}

func (s *RecordService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *RecordService) notify() {
	if s.Notifier != nil {
		s.Notifier.Notify()
	}
}

func (s *RecordService) Create(ctx context.Context, draft RecordDraft) (models.Record, error) {
	now := s.now()
	input, violations := ValidateRecord(draft, now)
	if !violations.OK() {
		return models.Record{}, ErrInvalid("Record is invalid", violations)
	}
	record := models.Record{ID: uuid.NewString(), CreatedAt: now.UTC()}
	applyInput(&record, input, now)
	TrackStatus(&record, now)

	if err := s.Store.Records().Create(ctx, record); err != nil {
		return models.Record{}, storeError(err, "", "Record already exists", "create record")
	}
	recordsCreated.Inc()
	s.Logger.Info("record created", zap.String("record_id", record.ID), zap.String("status", string(record.Status)))
	s.notify()
	return record, nil
}

func (s *RecordService) Get(ctx context.Context, id string) (models.Record, error) {
	record, err := s.Store.Records().Get(ctx, id)
	if err != nil {
		return models.Record{}, storeError(err, "Record not found", "", "get record")
	}
	return record, nil
}

// Update merges the patch onto the stored record, re-validates the whole
// draft and appends a history entry when the status moved.
func (s *RecordService) Update(ctx context.Context, id string, patch RecordPatch) (models.Record, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return models.Record{}, err
	}
	now := s.now()
	input, violations := ValidateRecord(patch.Apply(DraftFromRecord(record)), now)
	if !violations.OK() {
		return models.Record{}, ErrInvalid("Record is invalid", violations)
	}
	previous := record.Status
	applyInput(&record, input, now)
	TrackStatus(&record, now)

	if err := s.Store.Records().Update(ctx, record); err != nil {
		return models.Record{}, storeError(err, "Record not found", "", "update record")
	}
	if previous != record.Status {
		statusChanges.WithLabelValues(string(record.Status)).Inc()
		s.Logger.Info("record status changed",
			zap.String("record_id", record.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(record.Status)))
	}
	s.notify()
	return record, nil
}

func (s *RecordService) Delete(ctx context.Context, id string) error {
	if err := s.Store.Records().Delete(ctx, id); err != nil {
		return storeError(err, "Record not found", "", "delete record")
	}
	s.Logger.Info("record deleted", zap.String("record_id", id))
	s.notify()
	return nil
}

// List returns matching records, newest first.
func (s *RecordService) List(ctx context.Context, filter RecordFilter) ([]models.Record, error) {
	records, err := s.Store.Records().List(ctx)
	if err != nil {
		return nil, WrapError(err, "list records")
	}
	query := Fold(filter.Query)
	status := strings.ToLower(strings.TrimSpace(filter.Status))
	crime := strings.ToLower(strings.TrimSpace(filter.Crime))

	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if status != "" && string(r.Status) != status {
			continue
		}
		if crime != "" && string(r.Crime) != crime {
			continue
		}
		if !filter.Entry.Contains(r.EntryDate) {
			continue
		}
		if !matchesAny(query, r.FullName, r.ProcessNumber, r.CrimeLabel()) {
			continue
		}
		out = append(out, r)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *RecordService) Recent(ctx context.Context) ([]models.Record, error) {
	records, err := s.Store.Records().List(ctx)
	if err != nil {
		return nil, WrapError(err, "list records")
	}
	return Recent(records, RecentLimit), nil
}

// Recent returns the n most recently created records.
func Recent(records []models.Record, n int) []models.Record {
	out := make([]models.Record, len(records))
	copy(out, records)
	sortNewestFirst(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func sortNewestFirst(records []models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

func applyInput(r *models.Record, in RecordInput, now time.Time) {
	r.FullName = in.FullName
	r.BirthDate = in.BirthDate
	r.Gender = in.Gender
	r.ProcessNumber = in.ProcessNumber
	r.Crime = in.Crime
	r.OtherCrime = in.OtherCrime
	r.EntryDate = in.EntryDate
	r.SentenceYears = in.SentenceYears
	r.Status = in.Status
	r.Photo = in.Photo
	r.UpdatedAt = now.UTC()
}
