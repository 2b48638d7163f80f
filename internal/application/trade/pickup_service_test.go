package trade

import (
	"context"
	"testing"

	"github.com/exportops/backend/internal/domain/ledger"
	"github.com/exportops/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createOrder(t *testing.T, f *tradeFixture, number string, ordered int64) *OrderResponse {
	t.Helper()
	resp, err := f.orders.CreateOrder(context.Background(), CreateOrderRequest{
		OrderNumber: number,
		Items:       []OrderItemRequest{{SKU: "ABC-100", OrderedQuantity: qty(ordered)}},
	})
	require.NoError(t, err)
	return resp
}

func TestRecordPickup(t *testing.T) {
	f := newTradeFixture()
	order := createOrder(t, f, "PO-200", 20)

	resp, err := f.pickups.RecordPickup(context.Background(), RecordPickupRequest{
		OrderID: order.ID,
		Lines:   []PickupLineRequest{{SKU: "ABC-100", Quantity: qty(5)}},
	})

	require.NoError(t, err)
	assert.Equal(t, trade.PickupStatusInTransit, resp.Status)
	require.Len(t, resp.Lines, 1)
	assert.True(t, resp.Lines[0].Quantity.Equal(qty(5)))

	commitments, err := f.orders.OrderCommitments(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, commitments, 1)
	assert.True(t, commitments[0].InTransit.Equal(qty(5)))
	assert.True(t, commitments[0].AlreadyInwarded.IsZero())
}

func TestRecordPickup_ExceedsCommitment(t *testing.T) {
	f := newTradeFixture()
	order := createOrder(t, f, "PO-201", 20)
	_, err := f.pickups.RecordPickup(context.Background(), RecordPickupRequest{
		OrderID: order.ID,
		Lines:   []PickupLineRequest{{SKU: "ABC-100", Quantity: qty(18)}},
	})
	require.NoError(t, err)

	_, err = f.pickups.RecordPickup(context.Background(), RecordPickupRequest{
		OrderID: order.ID,
		Lines:   []PickupLineRequest{{SKU: "ABC-100", Quantity: qty(3)}},
	})

	var ceErr *ledger.CommitmentExceededError
	require.ErrorAs(t, err, &ceErr)
	assert.True(t, ceErr.InTransit.Equal(qty(18)))
	assert.True(t, ceErr.Proposed.Equal(qty(3)))
}

func TestRecordPickup_LinesAccumulateAgainstCommitment(t *testing.T) {
	f := newTradeFixture()
	order := createOrder(t, f, "PO-207", 20)

	// Each line fits the open commitment on its own. Together they exceed
	// it, so the whole pickup is refused.
	_, err := f.pickups.RecordPickup(context.Background(), RecordPickupRequest{
		OrderID: order.ID,
		Lines: []PickupLineRequest{
			{SKU: "ABC-100", Quantity: qty(15)},
			{SKU: "ABC-100", Quantity: qty(15)},
		},
	})

	var ceErr *ledger.CommitmentExceededError
	require.ErrorAs(t, err, &ceErr)
	assert.True(t, ceErr.Proposed.Equal(qty(30)))

	commitments, err := f.orders.OrderCommitments(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, commitments[0].InTransit.IsZero())
}

func TestCompletePickup_UnregisteredWarehouse(t *testing.T) {
	f := newTradeFixture()
	order := createOrder(t, f, "PO-208", 20)
	recorded, err := f.pickups.RecordPickup(context.Background(), RecordPickupRequest{
		OrderID: order.ID,
		Lines:   []PickupLineRequest{{SKU: "ABC-100", Quantity: qty(5)}},
	})
	require.NoError(t, err)

	_, err = f.pickups.CompletePickup(context.Background(), recorded.ID, CompletePickupRequest{
		WarehouseID: uuid.New(),
	})

	var vErr *ledger.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "warehouse_id", vErr.Field)

	// Nothing landed in the ledger for the refused completion.
	receipts, err := f.receiptRepo.FindByOrderNumber(context.Background(), "PO-208")
	require.NoError(t, err)
	assert.Empty(t, receipts)
}

func TestRecordPickup_UnknownOrder(t *testing.T) {
	f := newTradeFixture()

	_, err := f.pickups.RecordPickup(context.Background(), RecordPickupRequest{
		OrderID: uuid.New(),
		Lines:   []PickupLineRequest{{SKU: "ABC-100", Quantity: qty(5)}},
	})

	var nfErr *ledger.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestCompletePickup_MovesQuantityIntoLedger(t *testing.T) {
	f := newTradeFixture()
	order := createOrder(t, f, "PO-202", 20)
	warehouse := f.warehouseRepo.add("SHANGHAI")
	recorded, err := f.pickups.RecordPickup(context.Background(), RecordPickupRequest{
		OrderID: order.ID,
		Lines:   []PickupLineRequest{{SKU: "ABC-100", Quantity: qty(5)}},
	})
	require.NoError(t, err)

	completed, err := f.pickups.CompletePickup(context.Background(), recorded.ID, CompletePickupRequest{
		WarehouseID: warehouse.ID,
		CompanyName: "Acme Trading",
	})

	require.NoError(t, err)
	assert.Equal(t, trade.PickupStatusCompleted, completed.Status)

	// The quantity moved from in-transit to inwarded, never both.
	commitments, err := f.orders.OrderCommitments(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, commitments, 1)
	assert.True(t, commitments[0].InTransit.IsZero())
	assert.True(t, commitments[0].AlreadyInwarded.Equal(qty(5)))

	receipts, err := f.receiptRepo.FindByOrderNumber(context.Background(), "PO-202")
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	entries, err := f.entryRepo.FindByReceipt(context.Background(), receipts[0].ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].RemainingStock.Equal(qty(5)))
	assert.Equal(t, warehouse.ID, entries[0].WarehouseID)
}

func TestCompletePickup_RequiresWarehouse(t *testing.T) {
	f := newTradeFixture()

	_, err := f.pickups.CompletePickup(context.Background(), uuid.New(), CompletePickupRequest{})

	var vErr *ledger.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "warehouse_id", vErr.Field)
}

func TestCompletePickup_Twice(t *testing.T) {
	f := newTradeFixture()
	order := createOrder(t, f, "PO-203", 20)
	warehouse := f.warehouseRepo.add("NINGBO")
	recorded, err := f.pickups.RecordPickup(context.Background(), RecordPickupRequest{
		OrderID: order.ID,
		Lines:   []PickupLineRequest{{SKU: "ABC-100", Quantity: qty(5)}},
	})
	require.NoError(t, err)

	_, err = f.pickups.CompletePickup(context.Background(), recorded.ID, CompletePickupRequest{WarehouseID: warehouse.ID})
	require.NoError(t, err)

	_, err = f.pickups.CompletePickup(context.Background(), recorded.ID, CompletePickupRequest{WarehouseID: warehouse.ID})
	assert.Error(t, err)
}

func TestCancelPickup_ReleasesCommitment(t *testing.T) {
	f := newTradeFixture()
	order := createOrder(t, f, "PO-204", 20)
	recorded, err := f.pickups.RecordPickup(context.Background(), RecordPickupRequest{
		OrderID: order.ID,
		Lines:   []PickupLineRequest{{SKU: "ABC-100", Quantity: qty(5)}},
	})
	require.NoError(t, err)

	require.NoError(t, f.pickups.CancelPickup(context.Background(), recorded.ID))

	commitments, err := f.orders.OrderCommitments(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, commitments[0].InTransit.IsZero())

	// The released quantity is claimable again.
	_, err = f.pickups.RecordPickup(context.Background(), RecordPickupRequest{
		OrderID: order.ID,
		Lines:   []PickupLineRequest{{SKU: "ABC-100", Quantity: qty(20)}},
	})
	assert.NoError(t, err)
}

func TestCancelPickup_AfterCompletion(t *testing.T) {
	f := newTradeFixture()
	order := createOrder(t, f, "PO-205", 20)
	warehouse := f.warehouseRepo.add("QINGDAO")
	recorded, err := f.pickups.RecordPickup(context.Background(), RecordPickupRequest{
		OrderID: order.ID,
		Lines:   []PickupLineRequest{{SKU: "ABC-100", Quantity: qty(5)}},
	})
	require.NoError(t, err)
	_, err = f.pickups.CompletePickup(context.Background(), recorded.ID, CompletePickupRequest{WarehouseID: warehouse.ID})
	require.NoError(t, err)

	assert.Error(t, f.pickups.CancelPickup(context.Background(), recorded.ID))
}

func TestListPickupsByOrder(t *testing.T) {
	f := newTradeFixture()
	order := createOrder(t, f, "PO-206", 40)
	for i := 0; i < 2; i++ {
		_, err := f.pickups.RecordPickup(context.Background(), RecordPickupRequest{
			OrderID: order.ID,
			Lines:   []PickupLineRequest{{SKU: "ABC-100", Quantity: qty(5)}},
		})
		require.NoError(t, err)
	}

	pickups, err := f.pickups.ListPickupsByOrder(context.Background(), order.ID)

	require.NoError(t, err)
	assert.Len(t, pickups, 2)
}

func TestGetPickup_Unknown(t *testing.T) {
	f := newTradeFixture()

	_, err := f.pickups.GetPickup(context.Background(), uuid.New())

	var nfErr *ledger.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}
