package kv

import (
	"context"
	"strings"

	"khosta-backend-go/internal/models"
	"khosta-backend-go/internal/store"
)

// Collection keys, matching the browser storage layout.
const (
	KeyRecords  = "records"
	KeyVisitors = "visitors"
	KeyVisits   = "visits"
	KeyUsers    = "users"
)

type Store struct {
	backend  Backend
	records  *recordRepo
	visitors *visitorRepo
	visits   *visitRepo
	users    *userRepo
}

func New(backend Backend) *Store {
	return &Store{
		backend:  backend,
		records:  &recordRepo{c: newCollection(backend, KeyRecords, func(r models.Record) string { return r.ID })},
		visitors: &visitorRepo{c: newCollection(backend, KeyVisitors, func(v models.Visitor) string { return v.ID })},
		visits:   &visitRepo{c: newCollection(backend, KeyVisits, func(v models.Visit) string { return v.ID })},
		users:    &userRepo{c: newCollection(backend, KeyUsers, func(u models.User) string { return u.ID })},
	}
}

func (s *Store) Records() store.Records   { return s.records }
func (s *Store) Visitors() store.Visitors { return s.visitors }
func (s *Store) Visits() store.Visits     { return s.visits }
func (s *Store) Users() store.Users       { return s.users }

func (s *Store) Ping(ctx context.Context) error { return s.backend.Ping(ctx) }
func (s *Store) Close() error                   { return s.backend.Close() }

type recordRepo struct {
	c *collection[models.Record]
}

func (r *recordRepo) List(ctx context.Context) ([]models.Record, error) { return r.c.all(ctx) }
func (r *recordRepo) Get(ctx context.Context, id string) (models.Record, error) {
	return r.c.get(ctx, id)
}
func (r *recordRepo) Create(ctx context.Context, record models.Record) error {
	return r.c.insert(ctx, record, nil)
}
func (r *recordRepo) Update(ctx context.Context, record models.Record) error {
	return r.c.replace(ctx, record, nil)
}
func (r *recordRepo) Delete(ctx context.Context, id string) error { return r.c.remove(ctx, id) }

type visitorRepo struct {
	c *collection[models.Visitor]
}

func sameDocument(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (r *visitorRepo) List(ctx context.Context) ([]models.Visitor, error) { return r.c.all(ctx) }
func (r *visitorRepo) Get(ctx context.Context, id string) (models.Visitor, error) {
	return r.c.get(ctx, id)
}
func (r *visitorRepo) GetByDocument(ctx context.Context, document string) (models.Visitor, error) {
	return r.c.find(ctx, func(v models.Visitor) bool { return sameDocument(v.Document, document) })
}
func (r *visitorRepo) Create(ctx context.Context, visitor models.Visitor) error {
	return r.c.insert(ctx, visitor, func(v models.Visitor) bool { return sameDocument(v.Document, visitor.Document) })
}
func (r *visitorRepo) Update(ctx context.Context, visitor models.Visitor) error {
	return r.c.replace(ctx, visitor, func(v models.Visitor) bool { return sameDocument(v.Document, visitor.Document) })
}
func (r *visitorRepo) Delete(ctx context.Context, id string) error { return r.c.remove(ctx, id) }

type visitRepo struct {
	c *collection[models.Visit]
}

func (r *visitRepo) List(ctx context.Context) ([]models.Visit, error) { return r.c.all(ctx) }
func (r *visitRepo) Create(ctx context.Context, visit models.Visit) error {
	return r.c.insert(ctx, visit, nil)
}

type userRepo struct {
	c *collection[models.User]
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) { return r.c.all(ctx) }
func (r *userRepo) Get(ctx context.Context, id string) (models.User, error) {
	return r.c.get(ctx, id)
}
func (r *userRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.c.find(ctx, func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}
func (r *userRepo) Create(ctx context.Context, user models.User) error {
	return r.c.insert(ctx, user, func(u models.User) bool { return strings.EqualFold(u.Email, user.Email) })
}
func (r *userRepo) Update(ctx context.Context, user models.User) error {
	return r.c.replace(ctx, user, func(u models.User) bool { return strings.EqualFold(u.Email, user.Email) })
}
func (r *userRepo) Delete(ctx context.Context, id string) error { return r.c.remove(ctx, id) }
