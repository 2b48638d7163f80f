package trade

import (
	"context"
	"testing"

	appledger "github.com/exportops/backend/internal/application/ledger"
	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/shared"
	"github.com/exportops/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	f := newTradeFixture()

	resp, err := f.orders.CreateOrder(context.Background(), CreateOrderRequest{
		OrderNumber:  "PO-100",
		SupplierName: "Supplier Co",
		Items: []OrderItemRequest{
			{SKU: "ABC-100", ProductName: "Widget", OrderedQuantity: qty(20)},
			{SKU: "XYZ-200", OrderedQuantity: qty(5)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "PO-100", resp.OrderNumber)
	assert.Equal(t, trade.PurchaseOrderStatusOpen, resp.Status)
	require.Len(t, resp.Items, 2)

	stored, err := f.orderRepo.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Items, 2)
}

func TestCreateOrder_DuplicateNumber(t *testing.T) {
	f := newTradeFixture()
	req := CreateOrderRequest{
		OrderNumber: "PO-100",
		Items:       []OrderItemRequest{{SKU: "ABC-100", OrderedQuantity: qty(20)}},
	}
	_, err := f.orders.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	_, err = f.orders.CreateOrder(context.Background(), req)

	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestCreateOrder_RejectsNonPositiveQuantity(t *testing.T) {
	f := newTradeFixture()

	_, err := f.orders.CreateOrder(context.Background(), CreateOrderRequest{
		OrderNumber: "PO-101",
		Items:       []OrderItemRequest{{SKU: "ABC-100", OrderedQuantity: qty(0)}},
	})

	assert.Error(t, err)
}

func TestGetOrder_Unknown(t *testing.T) {
	f := newTradeFixture()

	_, err := f.orders.GetOrder(context.Background(), uuid.New())

	var nfErr *ledger.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestCompleteOrder(t *testing.T) {
	f := newTradeFixture()
	resp, err := f.orders.CreateOrder(context.Background(), CreateOrderRequest{
		OrderNumber: "PO-102",
		Items:       []OrderItemRequest{{SKU: "ABC-100", OrderedQuantity: qty(20)}},
	})
	require.NoError(t, err)

	require.NoError(t, f.orders.CompleteOrder(context.Background(), resp.ID))

	got, err := f.orders.GetOrder(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseOrderStatusCompleted, got.Status)

	// A completed order is closed for further transitions and commitments.
	assert.Error(t, f.orders.CompleteOrder(context.Background(), resp.ID))
	assert.Error(t, f.orders.CancelOrder(context.Background(), resp.ID))
}

func TestCancelOrder(t *testing.T) {
	f := newTradeFixture()
	resp, err := f.orders.CreateOrder(context.Background(), CreateOrderRequest{
		OrderNumber: "PO-103",
		Items:       []OrderItemRequest{{SKU: "ABC-100", OrderedQuantity: qty(20)}},
	})
	require.NoError(t, err)

	require.NoError(t, f.orders.CancelOrder(context.Background(), resp.ID))

	got, err := f.orders.GetOrder(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseOrderStatusCancelled, got.Status)
}

func TestListOrders(t *testing.T) {
	f := newTradeFixture()
	for _, number := range []string{"PO-104", "PO-105"} {
		_, err := f.orders.CreateOrder(context.Background(), CreateOrderRequest{
			OrderNumber: number,
			Items:       []OrderItemRequest{{SKU: "ABC-100", OrderedQuantity: qty(20)}},
		})
		require.NoError(t, err)
	}

	page, err := f.orders.ListOrders(context.Background(), appledger.ListFilter{})

	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 2, page.Total)
}

func TestOrderCommitments_EmptyOrder(t *testing.T) {
	f := newTradeFixture()
	resp, err := f.orders.CreateOrder(context.Background(), CreateOrderRequest{
		OrderNumber: "PO-106",
		Items:       []OrderItemRequest{{SKU: "ABC-100", OrderedQuantity: qty(20)}},
	})
	require.NoError(t, err)

	commitments, err := f.orders.OrderCommitments(context.Background(), resp.ID)

	require.NoError(t, err)
	require.Len(t, commitments, 1)
	assert.True(t, commitments[0].Ordered.Equal(qty(20)))
	assert.True(t, commitments[0].Committed.IsZero())
	assert.True(t, commitments[0].Remaining.Equal(qty(20)))
}
