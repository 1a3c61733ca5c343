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

type VisitorService struct {
	Store    store.Store
	Now      func() time.Time
	Notifier ChangeNotifier
	Logger   *zap.Logger
}

type VisitorInput struct {
	FullName string
	Document string
	Relation string
	RecordID string
	Photo    string
}

type VisitorFilter struct {
	Query   string
	Active  *bool
	Created DateRange
}

// VisitorView is a visitor joined with the name of the record they visit.
type VisitorView struct {
	models.Visitor
	RecordName string `json:"recordName"`
}

func (s *VisitorService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *VisitorService) notify() {
	if s.Notifier != nil {
		s.Notifier.Notify()
	}
}

func (in VisitorInput) normalize() VisitorInput {
	return VisitorInput{
		FullName: strings.TrimSpace(in.FullName),
		Document: strings.TrimSpace(in.Document),
		Relation: strings.TrimSpace(in.Relation),
		RecordID: strings.TrimSpace(in.RecordID),
		Photo:    strings.TrimSpace(in.Photo),
	}
}

func (s *VisitorService) validate(ctx context.Context, in VisitorInput) error {
	var violations Violations
	if in.FullName == "" {
		violations.add("fullName", "Full name is required")
	}
	if in.Document == "" {
		violations.add("document", "Document is required")
	}
	if in.RecordID == "" {
		violations.add("recordId", "Linked record is required")
	} else if _, err := s.Store.Records().Get(ctx, in.RecordID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return WrapError(err, "lookup record")
		}
		violations.add("recordId", "Linked record does not exist")
	}
	if !violations.OK() {
		return ErrInvalid("Visitor is invalid", violations)
	}
	return nil
}

// documentTaken reports whether another visitor already holds document.
func (s *VisitorService) documentTaken(ctx context.Context, document, selfID string) (bool, error) {
	existing, err := s.Store.Visitors().GetByDocument(ctx, document)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	case err != nil:
		return false, WrapError(err, "lookup visitor document")
	default:
		return existing.ID != selfID, nil
	}
}

const duplicateDocument = "A visitor with this document is already registered"

func (s *VisitorService) Register(ctx context.Context, in VisitorInput) (models.Visitor, error) {
	in = in.normalize()
	if err := s.validate(ctx, in); err != nil {
		return models.Visitor{}, err
	}
	taken, err := s.documentTaken(ctx, in.Document, "")
	if err != nil {
		return models.Visitor{}, err
	}
	if taken {
		return models.Visitor{}, ErrConflict(duplicateDocument)
	}
	visitor := models.Visitor{
		ID:        uuid.NewString(),
		FullName:  in.FullName,
		Document:  in.Document,
		Relation:  in.Relation,
		RecordID:  in.RecordID,
		Photo:     in.Photo,
		Active:    true,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Store.Visitors().Create(ctx, visitor); err != nil {
		return models.Visitor{}, storeError(err, "", duplicateDocument, "create visitor")
	}
	s.Logger.Info("visitor registered", zap.String("visitor_id", visitor.ID), zap.String("record_id", visitor.RecordID))
	s.notify()
	return visitor, nil
}

func (s *VisitorService) Get(ctx context.Context, id string) (models.Visitor, error) {
	visitor, err := s.Store.Visitors().Get(ctx, id)
	if err != nil {
		return models.Visitor{}, storeError(err, "Visitor not found", "", "get visitor")
	}
	return visitor, nil
}

func (s *VisitorService) Update(ctx context.Context, id string, in VisitorInput) (models.Visitor, error) {
	visitor, err := s.Get(ctx, id)
	if err != nil {
		return models.Visitor{}, err
	}
	in = in.normalize()
	if err := s.validate(ctx, in); err != nil {
		return models.Visitor{}, err
	}
	taken, err := s.documentTaken(ctx, in.Document, visitor.ID)
	if err != nil {
		return models.Visitor{}, err
	}
	if taken {
		return models.Visitor{}, ErrConflict(duplicateDocument)
	}
	visitor.FullName = in.FullName
	visitor.Document = in.Document
	visitor.Relation = in.Relation
	visitor.RecordID = in.RecordID
	visitor.Photo = in.Photo
	if err := s.Store.Visitors().Update(ctx, visitor); err != nil {
		return models.Visitor{}, storeError(err, "Visitor not found", duplicateDocument, "update visitor")
	}
	s.notify()
	return visitor, nil
}

func (s *VisitorService) SetActive(ctx context.Context, id string, active bool) (models.Visitor, error) {
	visitor, err := s.Get(ctx, id)
	if err != nil {
		return models.Visitor{}, err
	}
	if visitor.Active == active {
		return visitor, nil
	}
	visitor.Active = active
	if err := s.Store.Visitors().Update(ctx, visitor); err != nil {
		return models.Visitor{}, storeError(err, "Visitor not found", "", "update visitor")
	}
	s.Logger.Info("visitor activation changed", zap.String("visitor_id", id), zap.Bool("active", active))
	s.notify()
	return visitor, nil
}

func (s *VisitorService) Delete(ctx context.Context, id string) error {
	if err := s.Store.Visitors().Delete(ctx, id); err != nil {
		return storeError(err, "Visitor not found", "", "delete visitor")
	}
	s.notify()
	return nil
}

// List returns matching visitors, newest first, each with its record name
// or "N/A" when the record is gone.
func (s *VisitorService) List(ctx context.Context, filter VisitorFilter) ([]VisitorView, error) {
	snap, err := LoadSnapshot(ctx, s.Store)
	if err != nil {
		return nil, err
	}
	return FilterVisitors(snap, filter), nil
}

func FilterVisitors(snap Snapshot, filter VisitorFilter) []VisitorView {
	names := snap.recordNames()
	query := Fold(filter.Query)
	out := make([]VisitorView, 0, len(snap.Visitors))
	for _, v := range snap.Visitors {
		if filter.Active != nil && v.Active != *filter.Active {
			continue
		}
		if !filter.Created.Contains(v.CreatedAt) {
			continue
		}
		if !matchesAny(query, v.FullName, v.Document, v.Relation) {
			continue
		}
		out = append(out, VisitorView{Visitor: v, RecordName: nameOr(names, v.RecordID)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
