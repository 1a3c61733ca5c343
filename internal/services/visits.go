package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"khosta-backend-go/internal/models"
	"khosta-backend-go/internal/store"
)

const visitDateLayout = "2006-01-02T15:04"

type VisitService struct {
	Store    store.Store
	Now      func() time.Time
	Notifier ChangeNotifier
	Logger   *zap.Logger
}

type VisitInput struct {
	VisitorID string
	VisitDate string
	VisitType string
	Notes     string
}

type VisitFilter struct {
	VisitorID string
	RecordID  string
	Range     DateRange
}

// VisitView is a visit joined with visitor and record names.
type VisitView struct {
	models.Visit
	VisitorName     string `json:"visitorName"`
	VisitorDocument string `json:"visitorDocument"`
	RecordName      string `json:"recordName"`
}

func (s *VisitService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func parseVisitDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if parsed, err := time.Parse(visitDateLayout, value); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), true
	}
	return time.Time{}, false
}

// Log records a visit by an active visitor. The record reference is taken
// from the visitor, not from the caller.
func (s *VisitService) Log(ctx context.Context, in VisitInput, operatorID string) (models.Visit, error) {
	var violations Violations
	visitorID := strings.TrimSpace(in.VisitorID)
	if visitorID == "" {
		violations.add("visitorId", "Visitor is required")
	}
	visitDate, ok := parseVisitDate(in.VisitDate)
	if !ok {
		violations.add("visitDate", "Visit date is missing or invalid")
	}
	visitType := models.VisitType(strings.ToLower(strings.TrimSpace(in.VisitType)))
	if !visitType.Valid() {
		violations.add("visitType", "Visit type is invalid")
	}
	if !violations.OK() {
		return models.Visit{}, ErrInvalid("Visit is invalid", violations)
	}

	visitor, err := s.Store.Visitors().Get(ctx, visitorID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Visit{}, ErrNotFound("Visitor not found")
	}
	if err != nil {
		return models.Visit{}, WrapError(err, "get visitor")
	}
	if !visitor.Active {
		return models.Visit{}, invalidField("visitorId", "Visitor is inactive")
	}

	visit := models.Visit{
		ID:           uuid.NewString(),
		VisitorID:    visitor.ID,
		RecordID:     visitor.RecordID,
		VisitDate:    visitDate,
		VisitType:    visitType,
		Notes:        strings.TrimSpace(in.Notes),
		RegisteredAt: s.now().UTC(),
		RegisteredBy: operatorID,
	}
	if err := s.Store.Visits().Create(ctx, visit); err != nil {
		return models.Visit{}, WrapError(err, "create visit")
	}
	visitsLogged.WithLabelValues(string(visitType)).Inc()
	s.Logger.Info("visit logged",
		zap.String("visit_id", visit.ID),
		zap.String("visitor_id", visit.VisitorID),
		zap.String("operator_id", operatorID))
	if s.Notifier != nil {
		s.Notifier.Notify()
	}
	return visit, nil
}

func (s *VisitService) History(ctx context.Context, filter VisitFilter) ([]VisitView, error) {
	snap, err := LoadSnapshot(ctx, s.Store)
	if err != nil {
		return nil, err
	}
	return VisitHistory(snap, filter), nil
}

// VisitHistory joins visits with names, newest visit first. Missing
// visitors or records render as "N/A".
func VisitHistory(snap Snapshot, filter VisitFilter) []VisitView {
	visitors := snap.visitorsByID()
	records := snap.recordNames()
	out := make([]VisitView, 0, len(snap.Visits))
	for _, v := range snap.Visits {
		if filter.VisitorID != "" && v.VisitorID != filter.VisitorID {
			continue
		}
		if filter.RecordID != "" && v.RecordID != filter.RecordID {
			continue
		}
		if !filter.Range.Contains(v.VisitDate) {
			continue
		}
		view := VisitView{Visit: v, VisitorName: MissingName, RecordName: nameOr(records, v.RecordID)}
		if visitor, ok := visitors[v.VisitorID]; ok {
			view.VisitorName = visitor.FullName
			view.VisitorDocument = visitor.Document
		}
		out = append(out, view)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VisitDate.After(out[j].VisitDate)
	})
	return out
}
