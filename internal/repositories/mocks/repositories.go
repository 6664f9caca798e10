package mocks

import (
	"context"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockCartRepository is a testify mock of repository.CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func NewMockCartRepository(t testingT) *MockCartRepository {
	m := &MockCartRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockCartRepository) Load(ctx context.Context, sessionID string) (models.Cart, bool, error) {
	ret := m.Called(ctx, sessionID)
	cart, _ := ret.Get(0).(models.Cart)

	return cart, ret.Bool(1), ret.Error(2)
}

func (m *MockCartRepository) Save(ctx context.Context, sessionID string, cart models.Cart) error {
	return m.Called(ctx, sessionID, cart).Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

// MockSessionRepository is a testify mock of repository.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func NewMockSessionRepository(t testingT) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSessionRepository) Save(ctx context.Context, sessionID string, session *models.Session, ttl time.Duration) error {
	return m.Called(ctx, sessionID, session, ttl).Error(0)
}

func (m *MockSessionRepository) Load(ctx context.Context, sessionID string) (*models.Session, error) {
	ret := m.Called(ctx, sessionID)
	session, _ := ret.Get(0).(*models.Session)

	return session, ret.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

// MockRateLimitRepository is a testify mock of repository.RateLimitRepository.
type MockRateLimitRepository struct {
	mock.Mock
}

func NewMockRateLimitRepository(t testingT) *MockRateLimitRepository {
	m := &MockRateLimitRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockRateLimitRepository) CheckLoginRateLimit(ctx context.Context, email string) (bool, int, time.Duration, error) {
	ret := m.Called(ctx, email)
	retryAfter, _ := ret.Get(2).(time.Duration)

	return ret.Bool(0), ret.Int(1), retryAfter, ret.Error(3)
}
