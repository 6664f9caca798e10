package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockClient is a testify mock of backend.Client.
type MockClient struct {
	mock.Mock
}

func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockClient) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	ret := m.Called(ctx, req)
	resp, _ := ret.Get(0).(*models.AuthResponse)

	return resp, ret.Error(1)
}

func (m *MockClient) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	ret := m.Called(ctx, req)
	resp, _ := ret.Get(0).(*models.AuthResponse)

	return resp, ret.Error(1)
}

func (m *MockClient) CreateOrder(ctx context.Context, token string, sub models.OrderSubmission) (*models.Order, error) {
	ret := m.Called(ctx, token, sub)
	order, _ := ret.Get(0).(*models.Order)

	return order, ret.Error(1)
}

func (m *MockClient) ListOrders(ctx context.Context, token string, userID models.ID) ([]models.Order, error) {
	ret := m.Called(ctx, token, userID)
	orders, _ := ret.Get(0).([]models.Order)

	return orders, ret.Error(1)
}

func (m *MockClient) GetOrder(ctx context.Context, token string, orderID string) (*models.Order, error) {
	ret := m.Called(ctx, token, orderID)
	order, _ := ret.Get(0).(*models.Order)

	return order, ret.Error(1)
}

func (m *MockClient) Subscribe(fn func(models.UnauthorizedEvent)) func() {
	ret := m.Called(fn)
	unsubscribe, _ := ret.Get(0).(func())

	if unsubscribe == nil {
		return func() {}
	}

	return unsubscribe
}

func (m *MockClient) HealthURL() string {
	return m.Called().String(0)
}
