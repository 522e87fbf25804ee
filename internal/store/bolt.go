package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/gymdesk/backend/internal/models"
)

// Bucket layout, one nested bucket per tenant:
//
//	tenants/<tenant>/registers     YYYY-MM-DD        -> register JSON
//	tenants/<tenant>/transactions  YYYY-MM-DD/<id>   -> transaction JSON
//	tenants/<tenant>/tx_ids        <id>              -> transactions key
//	tenants/<tenant>/idempotency   <key>             -> <id>
var (
	tenantsBucket     = []byte("tenants")
	registersBucket   = []byte("registers")
	transactionBucket = []byte("transactions")
	txIDsBucket       = []byte("tx_ids")
	idempotencyBucket = []byte("idempotency")
)

// BoltStore is the embedded document-store adapter. Bolt allows a single
// writer at a time, so every Update is serialisable and the register document
// and its transaction document commit together.
type BoltStore struct {
	db  *bolt.DB
	now func() time.Time
}

// NewBoltStore opens (or creates) the database file at path.
func NewBoltStore(path string, timeout time.Duration) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(tenantsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) GetRegister(ctx context.Context, tenantID, date string) (*models.Register, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var reg *models.Register
	err := s.view(func(tx *bolt.Tx) error {
		b := tenantSub(tx, tenantID, registersBucket)
		if b == nil {
			return ErrNotFound
		}
		var err error
		reg, err = decodeRegister(b.Get([]byte(date)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *BoltStore) ListRegisters(ctx context.Context, tenantID, startDate, endDate string) ([]models.Register, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	registers := []models.Register{}
	err := s.view(func(tx *bolt.Tx) error {
		b := tenantSub(tx, tenantID, registersBucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Seek([]byte(startDate)); k != nil && string(k) <= endDate; k, v = c.Next() {
			var reg models.Register
			if err := json.Unmarshal(v, &reg); err != nil {
				return err
			}
			registers = append(registers, reg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// cursor order is ascending
	for i, j := 0, len(registers)-1; i < j; i, j = i+1, j-1 {
		registers[i], registers[j] = registers[j], registers[i]
	}
	return registers, nil
}

func (s *BoltStore) MutateRegister(ctx context.Context, tenantID, date string, fn RegisterMutation) (*models.Register, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var result *models.Register
	err := s.update(ctx, func(tx *bolt.Tx) error {
		regs, err := tenantBucket(tx, tenantID, registersBucket)
		if err != nil {
			return err
		}

		current, err := decodeRegister(regs.Get([]byte(date)))
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}

		next, err := fn(cloneRegister(current))
		if err != nil {
			return err
		}
		stamp(tenantID, date, current, next, s.now())

		if err := putJSON(regs, []byte(date), next); err != nil {
			return err
		}

		// last chance to honour cancellation before the commit
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BoltStore) AppendTransaction(ctx context.Context, entry *models.Transaction, fn RegisterMutation) (*models.Transaction, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var (
		stored  *models.Transaction
		created bool
	)
	err := s.update(ctx, func(tx *bolt.Tx) error {
		idem, err := tenantBucket(tx, entry.TenantID, idempotencyBucket)
		if err != nil {
			return err
		}
		txs, err := tenantBucket(tx, entry.TenantID, transactionBucket)
		if err != nil {
			return err
		}
		ids, err := tenantBucket(tx, entry.TenantID, txIDsBucket)
		if err != nil {
			return err
		}

		if entry.IdempotencyKey != "" {
			if id := idem.Get([]byte(entry.IdempotencyKey)); id != nil {
				existing, err := decodeTransaction(txs.Get(ids.Get(id)))
				if err != nil {
					return err
				}
				stored, created = existing, false
				return nil
			}
		}

		regs, err := tenantBucket(tx, entry.TenantID, registersBucket)
		if err != nil {
			return err
		}
		current, err := decodeRegister(regs.Get([]byte(entry.Date)))
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}

		next, err := fn(cloneRegister(current))
		if err != nil {
			return err
		}
		stamp(entry.TenantID, entry.Date, current, next, s.now())
		if err := putJSON(regs, []byte(entry.Date), next); err != nil {
			return err
		}

		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = s.now()
		}
		key := transactionKey(entry.Date, entry.ID)
		if err := putJSON(txs, key, entry); err != nil {
			return err
		}
		if err := ids.Put([]byte(entry.ID), key); err != nil {
			return err
		}
		if entry.IdempotencyKey != "" {
			if err := idem.Put([]byte(entry.IdempotencyKey), []byte(entry.ID)); err != nil {
				return err
			}
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		copied := *entry
		stored, created = &copied, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (s *BoltStore) GetTransaction(ctx context.Context, tenantID, id string) (*models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var result *models.Transaction
	err := s.view(func(tx *bolt.Tx) error {
		ids := tenantSub(tx, tenantID, txIDsBucket)
		txs := tenantSub(tx, tenantID, transactionBucket)
		if ids == nil || txs == nil {
			return ErrNotFound
		}
		key := ids.Get([]byte(id))
		if key == nil {
			return ErrNotFound
		}
		var err error
		result, err = decodeTransaction(txs.Get(key))
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BoltStore) ListTransactions(ctx context.Context, tenantID, startDate, endDate string) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	transactions := []models.Transaction{}
	err := s.view(func(tx *bolt.Tx) error {
		b := tenantSub(tx, tenantID, transactionBucket)
		if b == nil {
			return nil
		}
		// "0" sorts right after "/", so this bound covers every id of endDate
		upper := endDate + "0"
		c := b.Cursor()
		for k, v := c.Seek([]byte(startDate)); k != nil && string(k) < upper; k, v = c.Next() {
			var t models.Transaction
			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}
			transactions = append(transactions, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		if transactions[i].CreatedAt.Equal(transactions[j].CreatedAt) {
			return transactions[i].ID > transactions[j].ID
		}
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	return transactions, nil
}

func (s *BoltStore) view(fn func(tx *bolt.Tx) error) error {
	return boltErr(s.db.View(fn))
}

// update runs fn as the single bolt writer. Waiting for the writer lock does
// not observe ctx, so the deadline is checked again once the lock is held.
func (s *BoltStore) update(ctx context.Context, fn func(tx *bolt.Tx) error) error {
	return boltErr(s.db.Update(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fn(tx)
	}))
}

func boltErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bolt.ErrDatabaseNotOpen), errors.Is(err, bolt.ErrTimeout):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// tenantSub returns an existing nested bucket for read transactions.
func tenantSub(tx *bolt.Tx, tenantID string, name []byte) *bolt.Bucket {
	root := tx.Bucket(tenantsBucket)
	if root == nil {
		return nil
	}
	tb := root.Bucket([]byte(tenantID))
	if tb == nil {
		return nil
	}
	return tb.Bucket(name)
}

// tenantBucket creates the nested bucket on demand inside write transactions.
func tenantBucket(tx *bolt.Tx, tenantID string, name []byte) (*bolt.Bucket, error) {
	root, err := tx.CreateBucketIfNotExists(tenantsBucket)
	if err != nil {
		return nil, err
	}
	tb, err := root.CreateBucketIfNotExists([]byte(tenantID))
	if err != nil {
		return nil, err
	}
	return tb.CreateBucketIfNotExists(name)
}

func transactionKey(date, id string) []byte {
	return []byte(date + "/" + id)
}

func putJSON(b *bolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

func decodeRegister(data []byte) (*models.Register, error) {
	if data == nil {
		return nil, ErrNotFound
	}
	var reg models.Register
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

func decodeTransaction(data []byte) (*models.Transaction, error) {
	if data == nil {
		return nil, ErrNotFound
	}
	var t models.Transaction
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
