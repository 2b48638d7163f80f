package trade

import (
	"context"
	"errors"
	"time"

	appledger "github.com/exportops/backend/internal/application/ledger"
	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/exportops/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService manages purchase orders and exposes their commitment view
type OrderService struct {
	scope          appledger.TransactionScope
	commitments    *appledger.CommitmentService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(scope appledger.TransactionScope, commitments *appledger.CommitmentService, logger *zap.Logger) *OrderService {
	return &OrderService{scope: scope, commitments: commitments, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateOrder creates a purchase order with its items
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	orderedAt := time.Now()
	if req.OrderedAt != nil {
		orderedAt = *req.OrderedAt
	}
	order, err := trade.NewPurchaseOrder(req.OrderNumber, req.SupplierName, orderedAt)
	if err != nil {
		return nil, err
	}
	order.Remark = req.Remark
	for _, item := range req.Items {
		if _, err := order.AddItem(item.ProductID, item.SKU, item.ProductName, item.OrderedQuantity); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		existing, err := repos.OrderRepo().FindByOrderNumber(ctx, order.OrderNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return shared.ErrAlreadyExists
		}
		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, order)
	s.logger.Info("Created purchase order",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", len(order.Items)))

	resp := NewOrderResponse(order)
	return &resp, nil
}

// GetOrder returns one order with its items
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, id)
		return err
	})
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ledger.NewNotFoundError("purchase order", id.String())
	}
	if err != nil {
		return nil, err
	}
	resp := NewOrderResponse(order)
	return &resp, nil
}

// ListOrders lists orders newest first
func (s *OrderService) ListOrders(ctx context.Context, filter appledger.ListFilter) (*shared.Paginated[OrderResponse], error) {
	f := filter.ToFilter()
	var orders []trade.PurchaseOrder
	var total int64
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		orders, err = repos.OrderRepo().FindAll(ctx, f)
		if err != nil {
			return err
		}
		total, err = repos.OrderRepo().Count(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, NewOrderResponse(&orders[i]))
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// OrderCommitments returns the commitment of every line on an order
func (s *OrderService) OrderCommitments(ctx context.Context, orderID uuid.UUID) ([]CommitmentResponse, error) {
	commitments, err := s.commitments.OrderCommitments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]CommitmentResponse, 0, len(commitments))
	for _, c := range commitments {
		responses = append(responses, NewCommitmentResponse(c))
	}
	return responses, nil
}

// CompleteOrder marks an order as fully received
func (s *OrderService) CompleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, (*trade.PurchaseOrder).Complete)
}

// CancelOrder closes an order before all goods arrived
func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, (*trade.PurchaseOrder).Cancel)
}

func (s *OrderService) transition(ctx context.Context, id uuid.UUID, change func(*trade.PurchaseOrder) error) error {
	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, id)
		if errors.Is(err, shared.ErrNotFound) {
			return ledger.NewNotFoundError("purchase order", id.String())
		}
		if err != nil {
			return err
		}
		if err := change(order); err != nil {
			return err
		}
		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, order)
	return nil
}

func (s *OrderService) publish(ctx context.Context, order *trade.PurchaseOrder) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range order.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish order event", zap.Error(err))
		}
	}
	order.ClearDomainEvents()
}
