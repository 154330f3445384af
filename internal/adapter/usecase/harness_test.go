package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"slotdesk/internal/core/domain"
	"slotdesk/internal/core/port"
)

// services wires every usecase onto one shared fake store, mirroring how
// main wires them onto one postgres store.
type services struct {
	store    *fakeStore
	clk      *stepClock
	notifier *fakeNotifier

	availability *AvailabilityService
	workOrders   *WorkOrderService
	payments     *PaymentService
	releases     *ReleaseService
	deploy       *DeployService
}

func newServices() *services {
	store := newFakeStore()
	clk := newStepClock(day(1))
	notifier := &fakeNotifier{}
	payments := NewPaymentService(store, store, store, clk, notifier)
	return &services{
		store:        store,
		clk:          clk,
		notifier:     notifier,
		availability: NewAvailabilityService(store, store, clk, notifier),
		workOrders:   NewWorkOrderService(store, store, payments, clk, notifier),
		payments:     payments,
		releases:     NewReleaseService(store, store, payments, clk, notifier),
		deploy:       NewDeployService(store, store, store, clk, notifier),
	}
}

func (s *services) reserve(t *testing.T, slotIDs ...int64) port.OrderView {
	t.Helper()
	var in port.ReserveOrderInput
	for i := range slotIDs {
		in.Items = append(in.Items, port.ReserveItemInput{SlotID: &slotIDs[i], Window: window(5, 10)})
	}
	view, err := s.availability.ReserveCommitments(context.Background(), client, in)
	require.NoError(t, err)
	return view
}

func (s *services) quote(t *testing.T, workOrderID int64) domain.WorkOrder {
	t.Helper()
	wo, err := s.workOrders.Quote(context.Background(), manager, port.QuoteInput{
		WorkOrderID:  workOrderID,
		PaymentTerms: domain.TermsPrepay,
		TaxRateBps:   1500,
	})
	require.NoError(t, err)
	return wo
}

// pay drives a quoted order through acceptance, PO approval and proforma
// payment, returning the release order created by the payment.
func (s *services) pay(t *testing.T, workOrderID int64) domain.ReleaseOrder {
	t.Helper()
	ctx := context.Background()
	_, err := s.workOrders.Accept(ctx, client, workOrderID, "docs/po-17.pdf")
	require.NoError(t, err)
	inv, err := s.workOrders.ApprovePO(ctx, manager, workOrderID)
	require.NoError(t, err)
	_, err = s.payments.Pay(ctx, manager, inv.ID)
	require.NoError(t, err)
	ro, err := s.store.GetReleaseOrderByWorkOrder(ctx, workOrderID)
	require.NoError(t, err)
	return ro
}

// uploadBanners puts a banner on every slot commitment of the order.
func (s *services) uploadBanners(t *testing.T, workOrderID int64) {
	t.Helper()
	ctx := context.Background()
	items, err := s.store.ListCommitments(ctx, workOrderID)
	require.NoError(t, err)
	for _, c := range items {
		if !c.HasSlot() {
			continue
		}
		_, err := s.releases.UploadBanner(ctx, client, c.ID, "banners/creative.png")
		require.NoError(t, err)
	}
}

// setupPaid builds a paid order with one slot commitment per channel and
// returns its freshly created release order.
func setupPaid(t *testing.T, channels ...domain.Channel) (*services, port.OrderView, domain.ReleaseOrder) {
	t.Helper()
	s := newServices()
	var slotIDs []int64
	for _, ch := range channels {
		slotIDs = append(slotIDs, seedSlot(t, s.store, domain.Slot{Channel: ch}))
	}
	view := s.reserve(t, slotIDs...)
	s.quote(t, view.Order.ID)
	ro := s.pay(t, view.Order.ID)
	return s, view, ro
}
