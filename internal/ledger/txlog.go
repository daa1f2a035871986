package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"stablecoin-ledger/internal/core/domain"

	"github.com/google/uuid"
)

type logEntry struct {
	tx       domain.Transaction
	prevHash string
	hash     string
}

// TransactionLog is the append-only record of finalized transactions.
// Entries are hash-chained so later tampering is detectable by Verify.
type TransactionLog struct {
	mu        sync.RWMutex
	entries   []logEntry
	byID      map[uuid.UUID]int
	byKey     map[string]int
	byAddress map[string][]int
}

// NewTransactionLog creates an empty log.
func NewTransactionLog() *TransactionLog {
	return &TransactionLog{
		byID:      make(map[uuid.UUID]int),
		byKey:     make(map[string]int),
		byAddress: make(map[string][]int),
	}
}

// Append stores tx unless a record with the same id, or the same scoped
// idempotency key, already exists. It returns the stored record and whether
// this call created it.
func (l *TransactionLog) Append(tx domain.Transaction) (domain.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i, ok := l.byID[tx.ID]; ok {
		return l.entries[i].tx.Clone(), false
	}
	key := tx.IdempotencyKey()
	if key != "" {
		if i, ok := l.byKey[domain.BuildIdempotencyKey(tx.Kind, key)]; ok {
			return l.entries[i].tx.Clone(), false
		}
	}

	prev := l.headLocked()
	stored := tx.Clone()
	l.entries = append(l.entries, logEntry{
		tx:       stored,
		prevHash: prev,
		hash:     chainHash(prev, len(l.entries), &stored),
	})
	idx := len(l.entries) - 1

	l.byID[tx.ID] = idx
	if key != "" {
		l.byKey[domain.BuildIdempotencyKey(tx.Kind, key)] = idx
	}
	l.byAddress[tx.FromAddress] = append(l.byAddress[tx.FromAddress], idx)
	if tx.ToAddress != tx.FromAddress {
		l.byAddress[tx.ToAddress] = append(l.byAddress[tx.ToAddress], idx)
	}
	return stored.Clone(), true
}

// Get returns the record with the given id.
func (l *TransactionLog) Get(id uuid.UUID) (domain.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.byID[id]
	if !ok {
		return domain.Transaction{}, false
	}
	return l.entries[i].tx.Clone(), true
}

// FindByKey looks up a record by its scoped idempotency key.
func (l *TransactionLog) FindByKey(scopedKey string) (domain.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.byKey[scopedKey]
	if !ok {
		return domain.Transaction{}, false
	}
	return l.entries[i].tx.Clone(), true
}

// ListByAddress returns records touching address, newest first.
// limit <= 0 returns all of them.
func (l *TransactionLog) ListByAddress(address string, limit int) []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.byAddress[address]
	n := len(idx)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Transaction, 0, n)
	for i := len(idx) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[idx[i]].tx.Clone())
	}
	return out
}

// Len is the number of stored records.
func (l *TransactionLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Head is the hash of the newest entry, "" for an empty log.
func (l *TransactionLog) Head() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.headLocked()
}

// Verify recomputes the hash chain from the first entry.
func (l *TransactionLog) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	prev := ""
	for i := range l.entries {
		e := &l.entries[i]
		if e.prevHash != prev {
			return fmt.Errorf("transaction log broken at index %d: prev hash mismatch", i)
		}
		if got := chainHash(prev, i, &e.tx); got != e.hash {
			return fmt.Errorf("transaction log broken at index %d: hash mismatch", i)
		}
		prev = e.hash
	}
	return nil
}

func (l *TransactionLog) headLocked() string {
	if len(l.entries) == 0 {
		return ""
	}
	return l.entries[len(l.entries)-1].hash
}

func chainHash(prev string, index int, tx *domain.Transaction) string {
	h := sha256.New()
	h.Write([]byte(prev))
	fmt.Fprintf(h, "|%d|%s|%s|%s|%s|%s|%s|%d",
		index,
		tx.ID,
		tx.FromAddress,
		tx.ToAddress,
		tx.Amount.String(),
		tx.Kind,
		tx.Status,
		tx.CreatedAt.UnixNano(),
	)
	return hex.EncodeToString(h.Sum(nil))
}
