package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stablecoin-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	transactionColumns       = `id, from_address, to_address, amount, kind, status, metadata, screening, created_at`
	transactionSelectColumns = `id, from_address, to_address, amount::text, kind, status, metadata, screening, created_at`
)

// TransactionRepo implements ports.TransactionRepository. It is the durable
// journal the engine publishes recorded transactions to.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a recorded transaction. Re-publishing the same ID is a no-op.
func (r *TransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	metadata, err := marshalNullable(t.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	screening, err := marshalNullable(t.Screening)
	if err != nil {
		return fmt.Errorf("marshal screening: %w", err)
	}

	query := `INSERT INTO ledger_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`

	_, err = r.pool.Exec(ctx, query,
		t.ID, t.FromAddress, t.ToAddress, t.Amount.String(),
		t.Kind, t.Status, metadata, screening, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID. Returns nil when absent.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionSelectColumns + ` FROM ledger_transactions WHERE id = $1`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// ListByAddress returns transactions touching address, newest first.
func (r *TransactionRepo) ListByAddress(ctx context.Context, address string, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionSelectColumns + ` FROM ledger_transactions
		WHERE from_address = $1 OR to_address = $1
		ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, address, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t         domain.Transaction
		amount    string
		metadata  []byte
		screening []byte
	)
	err := row.Scan(
		&t.ID, &t.FromAddress, &t.ToAddress, &amount,
		&t.Kind, &t.Status, &metadata, &screening, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if len(metadata) > 0 {
		t.Metadata = &domain.TransactionMetadata{}
		if err := json.Unmarshal(metadata, t.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if len(screening) > 0 {
		t.Screening = &domain.Decision{}
		if err := json.Unmarshal(screening, t.Screening); err != nil {
			return nil, fmt.Errorf("unmarshal screening: %w", err)
		}
	}
	return &t, nil
}

// marshalNullable keeps absent values as SQL NULL rather than the JSON literal null.
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
