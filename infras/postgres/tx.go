package postgres

//go:generate go run go.uber.org/mock/mockgen -source=./tx.go -destination=./mocks/tx_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// TxFunc runs inside a transaction. Returning an error rolls it back.
type TxFunc func(ctx context.Context, tx *sqlx.Tx) error

// Transactor runs a read-check-write sequence atomically.
type Transactor interface {
	DoSerializable(ctx context.Context, fn TxFunc) error
}

type transactor struct {
	conn *Connection
}

func NewTransactor(conn *Connection) Transactor {
	return &transactor{conn: conn}
}

// DoSerializable runs fn on the write pool at SERIALIZABLE isolation. A panic inside fn
// rolls back and is re-raised.
func (t *transactor) DoSerializable(ctx context.Context, fn TxFunc) (err error) {
	if t.conn == nil || t.conn.Write == nil {
		return ErrNotConnected
	}

	tx, err := t.conn.Write.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
