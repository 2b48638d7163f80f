package ledger

import (
	"context"
	"errors"

	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/exportops/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProposalTally accumulates the quantities one document has already claimed
// against each order line group. The lines of a multi-line receipt or pickup
// are validated against the ordered ceiling as a whole, not one at a time.
type ProposalTally map[uuid.UUID]decimal.Decimal

// NewProposalTally creates an empty tally for one document
func NewProposalTally() ProposalTally {
	return make(ProposalTally)
}

// CommitmentService computes how much of each purchase order line has been
// claimed by inward receipts and in-transit pickups, and validates proposed
// additions against the ordered ceiling.
type CommitmentService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCommitmentService creates a new CommitmentService
func NewCommitmentService(scope TransactionScope, logger *zap.Logger) *CommitmentService {
	return &CommitmentService{scope: scope, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CommitmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// OrderCommitments computes the commitment of every line on an order
func (s *CommitmentService) OrderCommitments(ctx context.Context, orderID uuid.UUID) ([]trade.LineCommitment, error) {
	var commitments []trade.LineCommitment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, orderID)
		if errors.Is(err, shared.ErrNotFound) {
			return ledger.NewNotFoundError("purchase order", orderID.String())
		}
		if err != nil {
			return err
		}
		commitments, err = s.computeAll(ctx, repos, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return commitments, nil
}

// ValidateProposal checks a proposed additional quantity against an order
// line's remaining commitment. It is the gate both the inward ingestor and
// the pickup recorder pass through.
func (s *CommitmentService) ValidateProposal(ctx context.Context, orderID uuid.UUID, orderLineID *uuid.UUID, productID *uuid.UUID, sku string, proposed decimal.Decimal) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, orderID)
		if errors.Is(err, shared.ErrNotFound) {
			return ledger.NewNotFoundError("purchase order", orderID.String())
		}
		if err != nil {
			return err
		}
		return s.validateAgainstOrder(ctx, repos, order, orderLineID, productID, sku, proposed, nil)
	})
}

// ValidateProposalWithin validates a proposal inside an already-open
// transaction, against an order the caller has loaded. The tally carries the
// quantities earlier lines of the same document already claimed; pass nil
// for a single-line proposal.
func (s *CommitmentService) ValidateProposalWithin(ctx context.Context, repos TransactionalRepositories, order *trade.PurchaseOrder, orderLineID *uuid.UUID, productID *uuid.UUID, sku string, proposed decimal.Decimal, tally ProposalTally) error {
	return s.validateAgainstOrder(ctx, repos, order, orderLineID, productID, sku, proposed, tally)
}

// validateAgainstOrder validates a proposal inside an existing transaction
func (s *CommitmentService) validateAgainstOrder(ctx context.Context, repos TransactionalRepositories, order *trade.PurchaseOrder, orderLineID *uuid.UUID, productID *uuid.UUID, sku string, proposed decimal.Decimal, tally ProposalTally) error {
	if !order.Status.CanCommit() {
		return ledger.NewValidationError("order", "order "+order.OrderNumber+" is closed for new commitments")
	}
	if proposed.LessThanOrEqual(decimal.Zero) {
		return ledger.NewValidationError("quantity", "proposed quantity must be positive")
	}

	items := s.matchItems(order, orderLineID, productID, sku)
	if len(items) == 0 {
		return ledger.NewValidationError("order_line", "no order line matches the given product")
	}

	commitment, err := s.computeLine(ctx, repos, order, items)
	if err != nil {
		return err
	}
	pending := decimal.Zero
	if tally != nil {
		pending = tally[items[0].ID]
	}
	if err := commitment.Validate(pending.Add(proposed)); err != nil {
		s.publishRejected(ctx, order.ID, err)
		return err
	}
	if tally != nil {
		tally[items[0].ID] = pending.Add(proposed)
	}
	return nil
}

// matchItems resolves the order lines a proposal targets: an explicit line
// ID wins, then every line matching the product, then every line matching
// the SKU. A product split over several lines yields them all, and the
// proposal counts against their combined ordered quantity.
func (s *CommitmentService) matchItems(order *trade.PurchaseOrder, orderLineID *uuid.UUID, productID *uuid.UUID, sku string) []*trade.PurchaseOrderItem {
	if orderLineID != nil {
		if item := order.FindItem(*orderLineID); item != nil {
			return []*trade.PurchaseOrderItem{item}
		}
	}
	return order.MatchItems(productID, sku)
}

func (s *CommitmentService) computeAll(ctx context.Context, repos TransactionalRepositories, order *trade.PurchaseOrder) ([]trade.LineCommitment, error) {
	commitments := make([]trade.LineCommitment, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items := []*trade.PurchaseOrderItem{item}
		for _, matched := range order.MatchItems(item.ProductID, item.SKU) {
			if matched.ID != item.ID {
				items = append(items, matched)
			}
		}
		commitment, err := s.computeLine(ctx, repos, order, items)
		if err != nil {
			return nil, err
		}
		commitments = append(commitments, *commitment)
	}
	return commitments, nil
}

// computeLine sums the inwarded and in-transit quantities claimed against
// one order line group. Receipt and pickup lines referencing a grouped line
// by ID are counted first; lines without a reference fall back to product
// and SKU matching against the order items.
func (s *CommitmentService) computeLine(ctx context.Context, repos TransactionalRepositories, order *trade.PurchaseOrder, items []*trade.PurchaseOrderItem) (*trade.LineCommitment, error) {
	group := make(map[uuid.UUID]bool, len(items))
	ordered := decimal.Zero
	for _, item := range items {
		group[item.ID] = true
		ordered = ordered.Add(item.OrderedQuantity)
	}

	inwarded := decimal.Zero
	receipts, err := repos.ReceiptRepo().FindByOrderNumber(ctx, order.OrderNumber)
	if err != nil {
		return nil, err
	}
	for i := range receipts {
		for _, line := range receipts[i].Lines {
			if s.lineTargetsGroup(order, group, line.OrderLineID, line.ProductID, line.SKU) {
				inwarded = inwarded.Add(line.Quantity)
			}
		}
	}

	inTransit := decimal.Zero
	pickups, err := repos.PickupRepo().FindInTransitByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	for i := range pickups {
		for _, line := range pickups[i].Lines {
			if s.lineTargetsGroup(order, group, line.OrderLineID, line.ProductID, line.SKU) {
				inTransit = inTransit.Add(line.Quantity)
			}
		}
	}

	return &trade.LineCommitment{
		OrderNumber:     order.OrderNumber,
		OrderLineID:     items[0].ID.String(),
		SKU:             items[0].SKU,
		Ordered:         ordered,
		AlreadyInwarded: inwarded,
		InTransit:       inTransit,
	}, nil
}

func (s *CommitmentService) lineTargetsGroup(order *trade.PurchaseOrder, group map[uuid.UUID]bool, orderLineID *uuid.UUID, productID *uuid.UUID, sku string) bool {
	if orderLineID != nil {
		return group[*orderLineID]
	}
	for _, matched := range order.MatchItems(productID, sku) {
		if group[matched.ID] {
			return true
		}
	}
	return false
}

func (s *CommitmentService) publishRejected(ctx context.Context, orderID uuid.UUID, err error) {
	var exceeded *ledger.CommitmentExceededError
	if s.eventPublisher == nil || !errors.As(err, &exceeded) {
		return
	}
	if pubErr := s.eventPublisher.Publish(ctx, ledger.NewCommitmentRejectedEvent(orderID, exceeded)); pubErr != nil {
		s.logger.Warn("Failed to publish commitment rejected event", zap.Error(pubErr))
	}
}
