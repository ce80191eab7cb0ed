package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// ContextKey is the type of the keys used with context to carry the
// contextual db map and transactions.
type ContextKey string

const (
	// mapKey the context.Context key to store the db map.
	mapKey ContextKey = "db.map"
)

// WithDB stores the db in the provided context under tag. Each service owns
// one tag (the registrar uses `registrar`) so that model code can resolve its
// backing store from the request context alone.
func WithDB(
	ctx context.Context,
	tag string,
	db *sqlx.DB,
) context.Context {
	m := map[string]*sqlx.DB{}
	if ctx.Value(mapKey) != nil {
		m = ctx.Value(mapKey).(map[string]*sqlx.DB)
	}
	m[tag] = db
	return context.WithValue(ctx, mapKey, m)
}

// GetDB returns the db stored in the context under tag, nil if the tag was
// never registered.
func GetDB(
	ctx context.Context,
	tag string,
) *sqlx.DB {
	m := ctx.Value(mapKey).(map[string]*sqlx.DB)
	if db, ok := m[tag]; ok {
		return db
	}
	return nil
}

// GetDBMap returns the full tag to db map stored in the context, used to
// propagate the map from the app context onto request contexts.
func GetDBMap(
	ctx context.Context,
) map[string]*sqlx.DB {
	return ctx.Value(mapKey).(map[string]*sqlx.DB)
}

// WithDBMap stores the db map in the provided context.
func WithDBMap(
	ctx context.Context,
	m map[string]*sqlx.DB,
) context.Context {
	return context.WithValue(ctx, mapKey, m)
}
