package models

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork is the atomic scope every posting step runs against.
// Callers composing several aggregates pass the same unit to each step.
type UnitOfWork interface {
	Context() context.Context
	DB() *gorm.DB
}

type gormUnit struct {
	ctx context.Context
	db  *gorm.DB
}

func (u gormUnit) Context() context.Context { return u.ctx }

// DB returns a fresh session bound to the unit's connection and context.
func (u gormUnit) DB() *gorm.DB { return u.db.WithContext(u.ctx) }

// NewUnit wraps an existing gorm handle (usually an open transaction).
func NewUnit(ctx context.Context, db *gorm.DB) UnitOfWork {
	return gormUnit{ctx: ctx, db: db}
}

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) Gorm() *gorm.DB { return d.db }

// Reader is a non-transactional unit for lookups outside an atomic scope.
func (d *Database) Reader(ctx context.Context) UnitOfWork {
	return NewUnit(ctx, d.db)
}

// Atomic runs fn inside one database transaction. Any error returned by fn rolls
// back every write made through the unit.
func (d *Database) Atomic(ctx context.Context, fn func(uow UnitOfWork) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewUnit(ctx, tx))
	})
}
