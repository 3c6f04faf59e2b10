package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/internal/repository"
	"github.com/fashionstore/storefront/pkg/errors"
)

type orderService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, logger *zap.Logger) *orderService {
	return &orderService{
		repos:  repos,
		logger: logger,
	}
}

// GetOrder returns an order with its items, scoped to the owning user.
// Pass uuid.Nil as userID to skip the ownership check (admin paths).
func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, []*domain.OrderItem, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	if userID != uuid.Nil && order.UserID != userID {
		return nil, nil, &errors.ErrNotFound{Resource: "order", ID: orderID.String()}
	}

	items, err := s.repos.Order.GetItems(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// ListOrders returns the user's orders, newest first
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.repos.Order.ListByUser(ctx, userID)
}

// AdvanceOrder moves an order to a new status through the state machine
func (s *orderService) AdvanceOrder(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus) error {
	if !to.IsValid() {
		return &errors.ErrValidation{Message: "unknown order status: " + string(to)}
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	// Validate state transition
	if !order.Status.CanTransitionTo(to) {
		return &errors.ErrInvalidStateTransition{
			From: order.Status,
			To:   to,
		}
	}

	if err := s.repos.Order.UpdateStatus(ctx, orderID, to); err != nil {
		return err
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(order.Status)),
		zap.String("to", string(to)),
	)

	return nil
}

// RefundOrder marks the order refunded on both status axes. The money
// fields stay frozen; refund is a status transition, not a recomputation.
func (s *orderService) RefundOrder(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.Status.CanTransitionTo(domain.OrderStatusRefunded) {
		return &errors.ErrInvalidStateTransition{
			From: order.Status,
			To:   domain.OrderStatusRefunded,
		}
	}

	if err := s.repos.Order.UpdateStatus(ctx, orderID, domain.OrderStatusRefunded); err != nil {
		return err
	}

	return s.repos.Order.UpdatePaymentStatus(ctx, orderID, domain.PaymentStatusRefunded)
}

// MarkPaid flags the order's payment as settled (payment gateways are
// simulated by status flags only)
func (s *orderService) MarkPaid(ctx context.Context, orderID uuid.UUID) error {
	if _, err := s.repos.Order.GetByID(ctx, orderID); err != nil {
		return err
	}

	return s.repos.Order.UpdatePaymentStatus(ctx, orderID, domain.PaymentStatusPaid)
}
