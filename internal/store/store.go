// Package store is the gorm-backed reference and entity store. All reads and
// writes of one request go through a single Tx.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trackii-backend/internal/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNotFound is returned by every lookup that resolves nothing, including
// rows that exist but are inactive.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) isPostgres() bool {
	return s.db.Dialector.Name() == "postgres"
}

// Transaction runs fn in one database transaction. fn's error rolls the
// transaction back and is returned; typed failures pass through unchanged,
// write conflicts become apperror.Conflict, anything else is a store fault.
// Cancelling ctx before commit rolls back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Tx) error) error {
	var opts []*sql.TxOptions
	if s.isPostgres() {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	}

	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&Tx{db: gtx, lockRows: s.isPostgres()})
	}, opts...)
	return classify(err)
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.KindOf(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.New(apperror.Conflict, "the record was changed by another scan, retry")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return apperror.New(apperror.Conflict, "the order is being updated by another scan, retry")
		}
	}
	return fmt.Errorf("store: %w", err)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
