// Package store defines the persistence contract shared by every backend.
// Core rules never import it; services load plain models through it.
package store

import (
	"context"
	"errors"

	"khosta-backend-go/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

type Records interface {
	List(ctx context.Context) ([]models.Record, error)
	Get(ctx context.Context, id string) (models.Record, error)
	Create(ctx context.Context, record models.Record) error
	Update(ctx context.Context, record models.Record) error
	Delete(ctx context.Context, id string) error
}

type Visitors interface {
	List(ctx context.Context) ([]models.Visitor, error)
	Get(ctx context.Context, id string) (models.Visitor, error)
	GetByDocument(ctx context.Context, document string) (models.Visitor, error)
	Create(ctx context.Context, visitor models.Visitor) error
	Update(ctx context.Context, visitor models.Visitor) error
	Delete(ctx context.Context, id string) error
}

type Visits interface {
	List(ctx context.Context) ([]models.Visit, error)
	Create(ctx context.Context, visit models.Visit) error
}

type Users interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, user models.User) error
	Update(ctx context.Context, user models.User) error
	Delete(ctx context.Context, id string) error
}

// Store bundles the collections of one backend.
type Store interface {
	Records() Records
	Visitors() Visitors
	Visits() Visits
	Users() Users
	Ping(ctx context.Context) error
	Close() error
}
