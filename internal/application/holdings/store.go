package holdings

import (
	"context"
	"sync"

	"coinfolio-backend/internal/domain"
	"coinfolio-backend/internal/pkg/apperrors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MutateFunc receives the transaction and the full holding set ordered by
// coin. The holdings it returns are saved in the same transaction.
type MutateFunc func(tx *gorm.DB, held []domain.Holding) ([]domain.Holding, error)

// Store serialises every read-modify-write of the holding set. Within one
// process a mutex orders callers; across processes the rows are locked
// FOR UPDATE (ignored by SQLite, which serialises writers itself).
type Store struct {
	DB *gorm.DB
	mu sync.Mutex
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// List returns all holdings ordered by coin.
func (s *Store) List(ctx context.Context) ([]domain.Holding, error) {
	var hs []domain.Holding
	if err := s.DB.WithContext(ctx).Order("coin ASC").Find(&hs).Error; err != nil {
		return nil, apperrors.Storage("load holdings", err)
	}
	return hs, nil
}

// Mutate runs fn in one transaction over the locked holding set. Any error
// rolls back every write fn made. Application errors are returned as is;
// anything else becomes a storage failure.
func (s *Store) Mutate(ctx context.Context, fn MutateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var held []domain.Holding
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order("coin ASC").Find(&held).Error; err != nil {
			return err
		}
		out, err := fn(tx, held)
		if err != nil {
			return err
		}
		for i := range out {
			if err := tx.Save(&out[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return apperrors.Storage("holding transaction failed", err)
}
