package service

import (
	"context"
	"lockrent/pkg/db"
	"lockrent/pkg/model"
	"sync"
)

// ────────────────────────────────────────────────
// Mock repositories for testing
// ────────────────────────────────────────────────

type mockLockRepository struct {
	createFunc      func(ctx context.Context, lock *model.Lock) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Lock, error)
	claimHeldFunc   func(ctx context.Context, userID string, lockID string) (*model.Lock, error)
	releaseFunc     func(ctx context.Context, lockID string, version int64) error
	deleteFunc      func(ctx context.Context, lockID string, version int64) error
	markRetiredFunc func(ctx context.Context, lockID string, version int64) error
	txFunc          func(ctx context.Context, fn db.TransactionFunc) error

	mu    sync.Mutex
	calls []string
}

func (m *mockLockRepository) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockLockRepository) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.Lock) error {
	m.record("create")
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return nil
}

func (m *mockLockRepository) FindByID(ctx context.Context, id string) (*model.Lock, error) {
	m.record("find")
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockLockRepository) ClaimHeld(ctx context.Context, userID string, lockID string) (*model.Lock, error) {
	m.record("claim")
	if m.claimHeldFunc != nil {
		return m.claimHeldFunc(ctx, userID, lockID)
	}
	return nil, nil
}

func (m *mockLockRepository) Release(ctx context.Context, lockID string, version int64) error {
	m.record("release")
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, lockID, version)
	}
	return nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string, version int64) error {
	m.record("delete")
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID, version)
	}
	return nil
}

func (m *mockLockRepository) MarkRetired(ctx context.Context, lockID string, version int64) error {
	m.record("mark_retired")
	if m.markRetiredFunc != nil {
		return m.markRetiredFunc(ctx, lockID, version)
	}
	return nil
}

func (m *mockLockRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	if m.txFunc != nil {
		return m.txFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockRentalRepository struct {
	createFunc      func(ctx context.Context, rental *model.Rental) error
	findByUserFunc  func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Rental, error)
	countByUserFunc func(ctx context.Context, userID string) (int64, error)

	mu      sync.Mutex
	created []*model.Rental
}

func (m *mockRentalRepository) Create(ctx context.Context, rental *model.Rental) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, rental); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, rental)
	return nil
}

func (m *mockRentalRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Rental, error) {
	if m.findByUserFunc != nil {
		return m.findByUserFunc(ctx, userID, limit, offset)
	}
	return []*model.Rental{}, nil
}

func (m *mockRentalRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	if m.countByUserFunc != nil {
		return m.countByUserFunc(ctx, userID)
	}
	return 0, nil
}

type mockPublisher struct {
	publishFunc func(ctx context.Context, rental *model.Rental, retired bool) error

	mu        sync.Mutex
	published []*model.Rental
}

func (m *mockPublisher) PublishRentalEnded(ctx context.Context, rental *model.Rental, retired bool) error {
	m.mu.Lock()
	m.published = append(m.published, rental)
	m.mu.Unlock()
	if m.publishFunc != nil {
		return m.publishFunc(ctx, rental, retired)
	}
	return nil
}
