// Package mocks provides testify mock implementations of the application ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wilson12358/daybook/domain/core/entities"
	"github.com/wilson12358/daybook/domain/events"
)

// MockEntryRepository is a mock implementation of ports.EntryRepository
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) FetchByOwner(ctx context.Context, ownerID string, limit int) ([]*entities.Entry, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Entry), args.Error(1)
}

func (m *MockEntryRepository) FetchByOwnerAndDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]*entities.Entry, error) {
	args := m.Called(ctx, ownerID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Entry), args.Error(1)
}

func (m *MockEntryRepository) Create(ctx context.Context, entry *entities.Entry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

func (m *MockEntryRepository) Update(ctx context.Context, entry *entities.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) Delete(ctx context.Context, ownerID, entryID string) (*entities.Entry, error) {
	args := m.Called(ctx, ownerID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Entry), args.Error(1)
}

func (m *MockEntryRepository) Count(ctx context.Context, ownerID string) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

// MockObjectStore is a mock implementation of ports.ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}
