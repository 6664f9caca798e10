package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
)

type OrderReader interface {
	ListOrders(ctx context.Context, token string, userID models.ID) ([]models.Order, error)
	GetOrder(ctx context.Context, token string, orderID string) (*models.Order, error)
}

// OrderService reads the order history of the signed-in user.
type OrderService struct {
	auth   *AuthSession
	orders OrderReader
}

func NewOrderService(auth *AuthSession, orders OrderReader) *OrderService {
	return &OrderService{auth: auth, orders: orders}
}

// List returns the user's orders, newest first.
func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	logger := middleware.LoggerFromContext(ctx)

	session, err := s.auth.Require()
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.ListOrders(ctx, session.Token, session.UserID)
	if err != nil {
		logger.Error("Failed to list orders", slog.String("user_id", session.UserID.String()), slog.Any("error", err))
		return nil, asAppError(err, "Failed to fetch orders")
	}

	slices.SortStableFunc(orders, func(a, b models.Order) int {
		return b.OrderDate.Compare(a.OrderDate)
	})

	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	logger := middleware.LoggerFromContext(ctx)

	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, errors.AddValidationError("id", "is required")
	}

	session, err := s.auth.Require()
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetOrder(ctx, session.Token, orderID)
	if err != nil {
		logger.Error("Failed to fetch order", slog.String("order_id", orderID), slog.Any("error", err))
		return nil, asAppError(err, "Failed to fetch order")
	}

	if session.Role != models.RoleAdmin && order.UserID != "" && order.UserID != session.UserID {
		logger.Warn("Order belongs to another user", slog.String("order_id", orderID))
		return nil, errors.ForbiddenError("You do not have access to this order")
	}

	return order, nil
}
