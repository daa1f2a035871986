package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"stablecoin-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	entry := &domain.AuditLog{
		ID:           uuid.New(),
		Operator:     "compliance",
		Action:       domain.AuditActionFreeze,
		ResourceType: "wallet",
		ResourceID:   "HK-USER-001",
		Details:      `{"status":200}`,
		IPAddress:    "10.0.0.8",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(entry.ID, entry.Operator, "FREEZE", entry.ResourceType,
			entry.ResourceID, []byte(entry.Details), entry.IPAddress, entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewAuditRepo(mock).Create(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_Create_EmptyDetailsIsNull(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	entry := &domain.AuditLog{ID: uuid.New(), Action: domain.AuditActionLogin, ResourceType: "session"}

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(entry.ID, "", "LOGIN", "session", "", []byte(nil), "", entry.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewAuditRepo(mock).Create(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_Create_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnError(errors.New("conn closed"))

	err = NewAuditRepo(mock).Create(context.Background(), &domain.AuditLog{ID: uuid.New()})
	assert.Error(t, err)
}
