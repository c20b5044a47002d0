package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/call-service/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

/*
Store исполняет каждую операцию как одну SERIALIZABLE-транзакцию.
Конфликт сериализации (40001) и deadlock (40P01) ретраятся здесь же,
сервисы ретраев не видят.
*/
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const maxTxRetries = 5

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx service.Tx) error) error {
	var err error
	for attempt := 0; attempt <= maxTxRetries; attempt++ {
		err = pgx.BeginTxFunc(ctx, s.pool,
			pgx.TxOptions{IsoLevel: pgx.Serializable},
			func(tx pgx.Tx) error {
				return fn(ctx, &pgTx{q: tx})
			})
		if err == nil || !retryable(err) {
			return err
		}
	}
	return err
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// querier — общий срез над pgx.Tx / *pgxpool.Pool.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type pgTx struct {
	q querier
}
