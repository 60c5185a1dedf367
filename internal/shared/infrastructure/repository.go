package infrastructure

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UnitOfWork gère les transactions pour les opérations d'écriture
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// DBUnitOfWork implémentation de UnitOfWork avec sqlx.DB
type DBUnitOfWork struct {
	db *sqlx.DB
}

// NewUnitOfWork crée une nouvelle instance de UnitOfWork
func NewUnitOfWork(db *sqlx.DB) UnitOfWork {
	return &DBUnitOfWork{db: db}
}

// Execute exécute une fonction dans une transaction, annulée en cas d'erreur ou de panique
func (uow *DBUnitOfWork) Execute(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := uow.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// BaseRepository structure de base pour les repositories de lecture
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository crée un nouveau repository de base
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// Select exécute une requête et remplit dest (tranche de structures tagguées db)
func (r BaseRepository) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return r.db.SelectContext(ctx, dest, query, args...)
}
