package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"presaleLedger/internal/ledger"
	"presaleLedger/internal/model"
)

var _ ledger.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS presale_records (
	key        TEXT PRIMARY KEY,
	record     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS presale_balances (
	asset      TEXT NOT NULL,
	account    TEXT NOT NULL,
	amount     NUMERIC(20, 0) NOT NULL CHECK (amount >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (asset, account)
);
`

// Store provides Postgres persistence for the presale ledger.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the ledger tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Update runs fn in a read-committed transaction. Records read through the
// transaction are locked with SELECT ... FOR UPDATE until it ends.
func (s *Store) Update(ctx context.Context, fn func(ledger.Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(pgTx pgx.Tx) error {
		return fn(&tx{tx: pgTx})
	})
}

func (s *Store) View(ctx context.Context, fn func(ledger.Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(pgTx pgx.Tx) error {
		return fn(&tx{tx: pgTx, readOnly: true})
	})
}

type tx struct {
	tx       pgx.Tx
	readOnly bool
}

func (t *tx) lockClause() string {
	if t.readOnly {
		return ""
	}
	return " FOR UPDATE"
}

func (t *tx) loadRecord(ctx context.Context, key string, v interface{}) error {
	var data []byte
	row := t.tx.QueryRow(ctx, `SELECT record FROM presale_records WHERE key=$1`+t.lockClause(), key)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.ErrNotFound
		}
		return fmt.Errorf("load %s: %w", key, err)
	}
	return ledger.DecodeRecord(data, v)
}

func (t *tx) insertRecord(ctx context.Context, key string, v interface{}) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	data, err := ledger.EncodeRecord(v)
	if err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `
		INSERT INTO presale_records (key, record, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (key) DO NOTHING
	`, key, data)
	if err != nil {
		return fmt.Errorf("insert %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrExists
	}
	return nil
}

func (t *tx) updateRecord(ctx context.Context, key string, v interface{}) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	data, err := ledger.EncodeRecord(v)
	if err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `
		UPDATE presale_records SET record = $2, updated_at = now() WHERE key = $1
	`, key, data)
	if err != nil {
		return fmt.Errorf("update %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (t *tx) Pool(ctx context.Context) (model.Pool, error) {
	var pool model.Pool
	if err := t.loadRecord(ctx, ledger.PoolKey, &pool); err != nil {
		return model.Pool{}, err
	}
	return pool, nil
}

func (t *tx) CreatePool(ctx context.Context, pool model.Pool) error {
	return t.insertRecord(ctx, ledger.PoolKey, pool)
}

func (t *tx) PutPool(ctx context.Context, pool model.Pool) error {
	return t.updateRecord(ctx, ledger.PoolKey, pool)
}

func (t *tx) Position(ctx context.Context, owner common.Address) (model.StakePosition, error) {
	var pos model.StakePosition
	if err := t.loadRecord(ctx, ledger.PositionKey(owner), &pos); err != nil {
		return model.StakePosition{}, err
	}
	if pos.Tiers == nil {
		pos.Tiers = make(map[model.Tier]model.TierLock)
	}
	return pos, nil
}

func (t *tx) CreatePosition(ctx context.Context, pos model.StakePosition) error {
	return t.insertRecord(ctx, ledger.PositionKey(pos.Owner), pos)
}

func (t *tx) PutPosition(ctx context.Context, pos model.StakePosition) error {
	return t.updateRecord(ctx, ledger.PositionKey(pos.Owner), pos)
}

func (t *tx) Balance(ctx context.Context, asset model.Asset, account common.Address) (uint64, error) {
	var text string
	row := t.tx.QueryRow(ctx, `
		SELECT amount::text FROM presale_balances WHERE asset=$1 AND account=$2
	`+t.lockClause(), string(asset), account.Hex())
	if err := row.Scan(&text); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("load balance: %w", err)
	}
	return ledger.DecodeBalance([]byte(text))
}

func (t *tx) SetBalance(ctx context.Context, asset model.Asset, account common.Address, amount uint64) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO presale_balances (asset, account, amount, updated_at)
		VALUES ($1, $2, $3::numeric, now())
		ON CONFLICT (asset, account)
		DO UPDATE SET amount = EXCLUDED.amount, updated_at = now()
	`, string(asset), account.Hex(), strconv.FormatUint(amount, 10))
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}
