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

// PickupService records goods collected from suppliers and moves them into
// the ledger when they arrive. An in-transit pickup holds part of the order
// commitment without being allocatable stock.
type PickupService struct {
	scope          appledger.TransactionScope
	commitments    *appledger.CommitmentService
	inward         *appledger.InwardService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPickupService creates a new PickupService
func NewPickupService(
	scope appledger.TransactionScope,
	commitments *appledger.CommitmentService,
	inward *appledger.InwardService,
	logger *zap.Logger,
) *PickupService {
	return &PickupService{
		scope:       scope,
		commitments: commitments,
		inward:      inward,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PickupService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RecordPickup validates every line against the order's open commitment and
// stores the pickup as in transit
func (s *PickupService) RecordPickup(ctx context.Context, req RecordPickupRequest) (*PickupResponse, error) {
	pickedUpAt := time.Now()
	if req.PickedUpAt != nil {
		pickedUpAt = *req.PickedUpAt
	}

	var pickup *trade.Pickup
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, req.OrderID)
		if errors.Is(err, shared.ErrNotFound) {
			return ledger.NewNotFoundError("purchase order", req.OrderID.String())
		}
		if err != nil {
			return err
		}

		pickup, err = trade.NewPickup(order.ID, order.OrderNumber, pickedUpAt)
		if err != nil {
			return err
		}
		pickup.Remark = req.Remark

		// One tally spans the whole pickup so its lines cannot pass the
		// commitment gate one by one while exceeding it together.
		tally := appledger.NewProposalTally()
		for _, lineReq := range req.Lines {
			if err := s.commitments.ValidateProposalWithin(ctx, repos, order, lineReq.OrderLineID, lineReq.ProductID, lineReq.SKU, lineReq.Quantity, tally); err != nil {
				return err
			}
			if _, err := pickup.AddLine(lineReq.OrderLineID, lineReq.ProductID, lineReq.SKU, lineReq.Quantity); err != nil {
				return err
			}
		}
		return repos.PickupRepo().Save(ctx, pickup)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, pickup)
	s.logger.Info("Recorded pickup",
		zap.String("pickup_id", pickup.ID.String()),
		zap.String("order_number", pickup.OrderNumber),
		zap.String("quantity", pickup.TotalQuantity().String()))

	resp := NewPickupResponse(pickup)
	return &resp, nil
}

// CompletePickup marks the pickup as arrived and inwards its lines into the
// given warehouse in the same transaction. The committed quantity moves from
// in-transit to inwarded without a window where it counts twice or not at
// all.
func (s *PickupService) CompletePickup(ctx context.Context, pickupID uuid.UUID, req CompletePickupRequest) (*PickupResponse, error) {
	if req.WarehouseID == uuid.Nil {
		return nil, ledger.NewValidationError("warehouse_id", "completion requires a warehouse")
	}

	var pickup *trade.Pickup
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		pickup, err = repos.PickupRepo().FindByID(ctx, pickupID)
		if errors.Is(err, shared.ErrNotFound) {
			return ledger.NewNotFoundError("pickup", pickupID.String())
		}
		if err != nil {
			return err
		}
		if err := pickup.Complete(); err != nil {
			return err
		}
		// Saved before the ingest so the commitment check below no longer
		// counts these lines as in transit. An error rolls the save back.
		if err := repos.PickupRepo().Save(ctx, pickup); err != nil {
			return err
		}

		ingest := appledger.IngestReceiptRequest{
			OrderNumber:    pickup.OrderNumber,
			InvoiceNumbers: req.InvoiceNumbers,
			CompanyName:    req.CompanyName,
			ReceivedAt:     req.ReceivedAt,
			Remark:         req.Remark,
		}
		for _, line := range pickup.Lines {
			ingest.Lines = append(ingest.Lines, appledger.InwardLineRequest{
				OrderLineID: line.OrderLineID,
				ProductID:   line.ProductID,
				SKU:         line.SKU,
				WarehouseID: req.WarehouseID,
				Quantity:    line.Quantity,
			})
		}
		resp, err := s.inward.IngestWithin(ctx, repos, ingest)
		if err != nil {
			return err
		}
		// The ingestor skips a receipt naming an unknown warehouse without
		// erroring. Completion must not lose the goods, so an empty ingest
		// rolls the whole completion back and the pickup stays in transit.
		if resp.EntriesCreated == 0 {
			return ledger.NewValidationError("warehouse_id", "completion warehouse is not registered")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, pickup)
	s.logger.Info("Completed pickup",
		zap.String("pickup_id", pickup.ID.String()),
		zap.String("warehouse_id", req.WarehouseID.String()))

	resp := NewPickupResponse(pickup)
	return &resp, nil
}

// CancelPickup releases the pickup's committed quantity back to the order
func (s *PickupService) CancelPickup(ctx context.Context, pickupID uuid.UUID) error {
	var pickup *trade.Pickup
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		pickup, err = repos.PickupRepo().FindByID(ctx, pickupID)
		if errors.Is(err, shared.ErrNotFound) {
			return ledger.NewNotFoundError("pickup", pickupID.String())
		}
		if err != nil {
			return err
		}
		if err := pickup.Cancel(); err != nil {
			return err
		}
		return repos.PickupRepo().Save(ctx, pickup)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, pickup)
	return nil
}

// GetPickup returns one pickup with its lines
func (s *PickupService) GetPickup(ctx context.Context, pickupID uuid.UUID) (*PickupResponse, error) {
	var pickup *trade.Pickup
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		pickup, err = repos.PickupRepo().FindByID(ctx, pickupID)
		return err
	})
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ledger.NewNotFoundError("pickup", pickupID.String())
	}
	if err != nil {
		return nil, err
	}
	resp := NewPickupResponse(pickup)
	return &resp, nil
}

// ListPickupsByOrder lists all pickups recorded against an order
func (s *PickupService) ListPickupsByOrder(ctx context.Context, orderID uuid.UUID) ([]PickupResponse, error) {
	var pickups []trade.Pickup
	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		pickups, err = repos.PickupRepo().FindByOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	responses := make([]PickupResponse, 0, len(pickups))
	for i := range pickups {
		responses = append(responses, NewPickupResponse(&pickups[i]))
	}
	return responses, nil
}

func (s *PickupService) publish(ctx context.Context, pickup *trade.Pickup) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range pickup.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish pickup event", zap.Error(err))
		}
	}
	pickup.ClearDomainEvents()
}
