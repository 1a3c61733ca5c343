package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"khosta-backend-go/internal/models"
	"khosta-backend-go/internal/store"
)

// Snapshot is one read of every collection a dashboard or report joins.
type Snapshot struct {
	Records  []models.Record
	Visitors []models.Visitor
	Visits   []models.Visit
}

// LoadSnapshot reads the three collections concurrently and fails as a
// whole on the first error.
func LoadSnapshot(ctx context.Context, st store.Store) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := st.Records().List(gctx)
		snap.Records = records
		return WrapError(err, "load records")
	})
	g.Go(func() error {
		visitors, err := st.Visitors().List(gctx)
		snap.Visitors = visitors
		return WrapError(err, "load visitors")
	})
	g.Go(func() error {
		visits, err := st.Visits().List(gctx)
		snap.Visits = visits
		return WrapError(err, "load visits")
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s Snapshot) recordNames() map[string]string {
	names := make(map[string]string, len(s.Records))
	for _, r := range s.Records {
		names[r.ID] = r.FullName
	}
	return names
}

func (s Snapshot) visitorsByID() map[string]models.Visitor {
	byID := make(map[string]models.Visitor, len(s.Visitors))
	for _, v := range s.Visitors {
		byID[v.ID] = v
	}
	return byID
}

// Missing references render as this.
const MissingName = "N/A"

func nameOr(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return MissingName
}
