// Package postgres is the relational store backend (sqlx over pgx).
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"khosta-backend-go/internal/models"
	"khosta-backend-go/internal/store"
)

const uniqueViolation = "23505"

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Records() store.Records   { return recordRepo{db: s.db} }
func (s *Store) Visitors() store.Visitors { return visitorRepo{db: s.db} }
func (s *Store) Visits() store.Visits     { return visitRepo{db: s.db} }
func (s *Store) Users() store.Users       { return userRepo{db: s.db} }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *Store) Close() error                   { return s.db.Close() }

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrDuplicate
	}
	return err
}

func expectOne(result sql.Result, err error) error {
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type recordRepo struct {
	db *sqlx.DB
}

const recordColumns = `id, full_name, birth_date, gender, process_number, crime, other_crime,
       entry_date, sentence_years, status, photo, created_at, updated_at`

func (r recordRepo) List(ctx context.Context) ([]models.Record, error) {
	records := []models.Record{}
	if err := r.db.SelectContext(ctx, &records, `SELECT `+recordColumns+` FROM records ORDER BY created_at`); err != nil {
		return nil, err
	}
	type historyRow struct {
		RecordID string `db:"record_id"`
		models.StatusHistoryEntry
	}
	rows := []historyRow{}
	if err := r.db.SelectContext(ctx, &rows, `
SELECT record_id, date, status, details
FROM record_history
ORDER BY record_id, position`); err != nil {
		return nil, err
	}
	byRecord := map[string][]models.StatusHistoryEntry{}
	for _, row := range rows {
		byRecord[row.RecordID] = append(byRecord[row.RecordID], row.StatusHistoryEntry)
	}
	for i := range records {
		records[i].History = byRecord[records[i].ID]
	}
	return records, nil
}

func (r recordRepo) Get(ctx context.Context, id string) (models.Record, error) {
	var record models.Record
	if err := r.db.GetContext(ctx, &record, `SELECT `+recordColumns+` FROM records WHERE id = $1`, id); err != nil {
		return models.Record{}, mapError(err)
	}
	history := []models.StatusHistoryEntry{}
	if err := r.db.SelectContext(ctx, &history, `
SELECT date, status, details FROM record_history WHERE record_id = $1 ORDER BY position`, id); err != nil {
		return models.Record{}, err
	}
	record.History = history
	return record, nil
}

func (r recordRepo) Create(ctx context.Context, record models.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	_, err = tx.NamedExecContext(ctx, `
INSERT INTO records (id, full_name, birth_date, gender, process_number, crime, other_crime,
  entry_date, sentence_years, status, photo, created_at, updated_at)
VALUES (:id, :full_name, :birth_date, :gender, :process_number, :crime, :other_crime,
  :entry_date, :sentence_years, :status, :photo, :created_at, :updated_at)`, record)
	if err != nil {
		return mapError(err)
	}
	if err := writeHistory(ctx, tx, record); err != nil {
		return err
	}
	return tx.Commit()
}

func (r recordRepo) Update(ctx context.Context, record models.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	err = expectOne(tx.NamedExecContext(ctx, `
UPDATE records SET full_name = :full_name, birth_date = :birth_date, gender = :gender,
  process_number = :process_number, crime = :crime, other_crime = :other_crime,
  entry_date = :entry_date, sentence_years = :sentence_years, status = :status,
  photo = :photo, updated_at = :updated_at
WHERE id = :id`, record))
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM record_history WHERE record_id = $1`, record.ID); err != nil {
		return err
	}
	if err := writeHistory(ctx, tx, record); err != nil {
		return err
	}
	return tx.Commit()
}

func writeHistory(ctx context.Context, tx *sqlx.Tx, record models.Record) error {
	for i, entry := range record.History {
		_, err := tx.ExecContext(ctx, `
INSERT INTO record_history (record_id, position, date, status, details) VALUES ($1, $2, $3, $4, $5)`,
			record.ID, i, entry.Date, entry.Status, entry.Details)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r recordRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id))
}

type visitorRepo struct {
	db *sqlx.DB
}

const visitorColumns = `id, full_name, document, relation, record_id, photo, active, created_at`

func (r visitorRepo) List(ctx context.Context) ([]models.Visitor, error) {
	visitors := []models.Visitor{}
	err := r.db.SelectContext(ctx, &visitors, `SELECT `+visitorColumns+` FROM visitors ORDER BY created_at`)
	return visitors, err
}

func (r visitorRepo) Get(ctx context.Context, id string) (models.Visitor, error) {
	var visitor models.Visitor
	err := r.db.GetContext(ctx, &visitor, `SELECT `+visitorColumns+` FROM visitors WHERE id = $1`, id)
	return visitor, mapError(err)
}

func (r visitorRepo) GetByDocument(ctx context.Context, document string) (models.Visitor, error) {
	var visitor models.Visitor
	err := r.db.GetContext(ctx, &visitor, `
SELECT `+visitorColumns+` FROM visitors WHERE lower(trim(document)) = lower(trim($1))`, document)
	return visitor, mapError(err)
}

func (r visitorRepo) Create(ctx context.Context, visitor models.Visitor) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO visitors (id, full_name, document, relation, record_id, photo, active, created_at)
VALUES (:id, :full_name, :document, :relation, :record_id, :photo, :active, :created_at)`, visitor)
	return mapError(err)
}

func (r visitorRepo) Update(ctx context.Context, visitor models.Visitor) error {
	return expectOne(r.db.NamedExecContext(ctx, `
UPDATE visitors SET full_name = :full_name, document = :document, relation = :relation,
  record_id = :record_id, photo = :photo, active = :active
WHERE id = :id`, visitor))
}

func (r visitorRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM visitors WHERE id = $1`, id))
}

type visitRepo struct {
	db *sqlx.DB
}

func (r visitRepo) List(ctx context.Context) ([]models.Visit, error) {
	visits := []models.Visit{}
	err := r.db.SelectContext(ctx, &visits, `
SELECT id, visitor_id, record_id, visit_date, visit_type, notes, registered_at, registered_by
FROM visits ORDER BY visit_date DESC`)
	return visits, err
}

func (r visitRepo) Create(ctx context.Context, visit models.Visit) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO visits (id, visitor_id, record_id, visit_date, visit_type, notes, registered_at, registered_by)
VALUES (:id, :visitor_id, :record_id, :visit_date, :visit_type, :notes, :registered_at, :registered_by)`, visit)
	return mapError(err)
}

type userRepo struct {
	db *sqlx.DB
}

const userColumns = `id, full_name, email, password_hash, role, active, created_at, updated_at`

func (r userRepo) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	return users, err
}

func (r userRepo) Get(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return user, mapError(err)
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return user, mapError(err)
}

func (r userRepo) Create(ctx context.Context, user models.User) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO users (id, full_name, email, password_hash, role, active, created_at, updated_at)
VALUES (:id, :full_name, :email, :password_hash, :role, :active, :created_at, :updated_at)`, user)
	return mapError(err)
}

func (r userRepo) Update(ctx context.Context, user models.User) error {
	return expectOne(r.db.NamedExecContext(ctx, `
UPDATE users SET full_name = :full_name, email = :email, password_hash = :password_hash,
  role = :role, active = :active, updated_at = :updated_at
WHERE id = :id`, user))
}

func (r userRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id))
}
