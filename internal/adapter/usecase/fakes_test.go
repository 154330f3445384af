package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"slotdesk/internal/core/domain"
	"slotdesk/internal/core/port"
)

// fakeStore is an in-memory implementation of every repository port. Like
// the real store it backs all of them at once, so a usecase spanning
// aggregates sees one consistent state.
type fakeStore struct {
	slots       map[int64]domain.Slot
	workOrders  map[int64]domain.WorkOrder
	commitments map[int64]domain.Commitment
	releases    map[int64]domain.ReleaseOrder
	invoices    map[int64]domain.Invoice
	deployments map[int64]domain.Deployment
	woEvents    []domain.WorkOrderEvent
	roEvents    []domain.ReleaseOrderEvent

	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		slots:       make(map[int64]domain.Slot),
		workOrders:  make(map[int64]domain.WorkOrder),
		commitments: make(map[int64]domain.Commitment),
		releases:    make(map[int64]domain.ReleaseOrder),
		invoices:    make(map[int64]domain.Invoice),
		deployments: make(map[int64]domain.Deployment),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) WithSerializableTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) CreateSlot(_ context.Context, slot domain.Slot) (int64, error) {
	slot.ID = f.id()
	f.slots[slot.ID] = slot
	return slot.ID, nil
}

func (f *fakeStore) GetSlot(_ context.Context, id int64) (domain.Slot, error) {
	s, ok := f.slots[id]
	if !ok {
		return domain.Slot{}, domain.ErrSlotNotFound
	}
	return s, nil
}

func (f *fakeStore) GetSlotForUpdate(ctx context.Context, id int64) (domain.Slot, error) {
	return f.GetSlot(ctx, id)
}

func (f *fakeStore) ListSlots(_ context.Context, channel *domain.Channel) ([]domain.Slot, error) {
	var out []domain.Slot
	for _, s := range f.slots {
		if channel == nil || s.Channel == *channel {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListLiveCommitments(_ context.Context, slotID int64, exclude *int64) ([]domain.Commitment, error) {
	var out []domain.Commitment
	for _, c := range f.commitments {
		if c.SlotID == nil || *c.SlotID != slotID {
			continue
		}
		if exclude != nil && c.ID == *exclude {
			continue
		}
		if f.workOrders[c.WorkOrderID].Status == domain.WorkOrderRejected {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) SetBlock(_ context.Context, slotID int64, reason string, window *domain.Window) error {
	s, ok := f.slots[slotID]
	if !ok {
		return domain.ErrSlotNotFound
	}
	s.Blocked = true
	s.BlockReason = reason
	s.BlockWindow = window
	f.slots[slotID] = s
	return nil
}

func (f *fakeStore) ClearBlock(_ context.Context, slotID int64) error {
	s, ok := f.slots[slotID]
	if !ok {
		return domain.ErrSlotNotFound
	}
	s.Blocked = false
	s.BlockReason = ""
	s.BlockWindow = nil
	f.slots[slotID] = s
	return nil
}

func (f *fakeStore) CreateWorkOrder(_ context.Context, wo domain.WorkOrder) (int64, error) {
	wo.ID = f.id()
	f.workOrders[wo.ID] = wo
	return wo.ID, nil
}

func (f *fakeStore) GetWorkOrder(_ context.Context, id int64) (domain.WorkOrder, error) {
	wo, ok := f.workOrders[id]
	if !ok {
		return domain.WorkOrder{}, domain.ErrWorkOrderNotFound
	}
	return wo, nil
}

func (f *fakeStore) GetWorkOrderForUpdate(ctx context.Context, id int64) (domain.WorkOrder, error) {
	return f.GetWorkOrder(ctx, id)
}

func (f *fakeStore) UpdateWorkOrderCAS(_ context.Context, wo domain.WorkOrder, expected domain.WorkOrderStatus) (bool, error) {
	cur, ok := f.workOrders[wo.ID]
	if !ok || cur.Status != expected {
		return false, nil
	}
	f.workOrders[wo.ID] = wo
	return true, nil
}

func (f *fakeStore) CreateCommitment(_ context.Context, c domain.Commitment) (int64, error) {
	c.ID = f.id()
	f.commitments[c.ID] = c
	return c.ID, nil
}

func (f *fakeStore) GetCommitment(_ context.Context, id int64) (domain.Commitment, error) {
	c, ok := f.commitments[id]
	if !ok {
		return domain.Commitment{}, domain.ErrCommitmentNotFound
	}
	return c, nil
}

func (f *fakeStore) ListCommitments(_ context.Context, workOrderID int64) ([]domain.Commitment, error) {
	var out []domain.Commitment
	for _, c := range f.commitments {
		if c.WorkOrderID == workOrderID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateCommitmentPrice(_ context.Context, commitmentID, price int64) error {
	c, ok := f.commitments[commitmentID]
	if !ok {
		return domain.ErrCommitmentNotFound
	}
	c.Price = price
	f.commitments[commitmentID] = c
	return nil
}

func (f *fakeStore) SetCommitmentBanner(_ context.Context, commitmentID int64, ref string, uploadedAt time.Time) error {
	c, ok := f.commitments[commitmentID]
	if !ok {
		return domain.ErrCommitmentNotFound
	}
	c.BannerRef = ref
	c.BannerUploadedAt = &uploadedAt
	f.commitments[commitmentID] = c
	return nil
}

func (f *fakeStore) AppendWorkOrderEvent(_ context.Context, ev domain.WorkOrderEvent) error {
	ev.ID = f.id()
	f.woEvents = append(f.woEvents, ev)
	return nil
}

func (f *fakeStore) ListWorkOrderEvents(_ context.Context, workOrderID int64) ([]domain.WorkOrderEvent, error) {
	var out []domain.WorkOrderEvent
	for _, ev := range f.woEvents {
		if ev.WorkOrderID == workOrderID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateReleaseOrder(_ context.Context, ro domain.ReleaseOrder) (int64, error) {
	for _, existing := range f.releases {
		if existing.WorkOrderID == ro.WorkOrderID {
			return 0, fmt.Errorf("%w: release order already exists for work order", domain.ErrConflict)
		}
	}
	ro.ID = f.id()
	f.releases[ro.ID] = ro
	return ro.ID, nil
}

func (f *fakeStore) GetReleaseOrder(_ context.Context, id int64) (domain.ReleaseOrder, error) {
	ro, ok := f.releases[id]
	if !ok {
		return domain.ReleaseOrder{}, domain.ErrReleaseOrderNotFound
	}
	return ro, nil
}

func (f *fakeStore) GetReleaseOrderForUpdate(ctx context.Context, id int64) (domain.ReleaseOrder, error) {
	return f.GetReleaseOrder(ctx, id)
}

func (f *fakeStore) GetReleaseOrderByWorkOrder(_ context.Context, workOrderID int64) (domain.ReleaseOrder, error) {
	for _, ro := range f.releases {
		if ro.WorkOrderID == workOrderID {
			return ro, nil
		}
	}
	return domain.ReleaseOrder{}, domain.ErrReleaseOrderNotFound
}

func (f *fakeStore) UpdateReleaseOrderCAS(_ context.Context, ro domain.ReleaseOrder, expected domain.ReleaseOrderStatus) (bool, error) {
	cur, ok := f.releases[ro.ID]
	if !ok || cur.Status != expected {
		return false, nil
	}
	f.releases[ro.ID] = ro
	return true, nil
}

func (f *fakeStore) AppendReleaseOrderEvent(_ context.Context, ev domain.ReleaseOrderEvent) error {
	ev.ID = f.id()
	f.roEvents = append(f.roEvents, ev)
	return nil
}

func (f *fakeStore) ListReleaseOrderEvents(_ context.Context, releaseOrderID int64) ([]domain.ReleaseOrderEvent, error) {
	var out []domain.ReleaseOrderEvent
	for _, ev := range f.roEvents {
		if ev.ReleaseOrderID == releaseOrderID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateInvoice(_ context.Context, inv domain.Invoice) (int64, error) {
	if inv.Kind == domain.InvoiceProforma && inv.Active {
		for _, existing := range f.invoices {
			if existing.WorkOrderID == inv.WorkOrderID && existing.Kind == domain.InvoiceProforma && existing.Active {
				return 0, fmt.Errorf("%w: active proforma already exists", domain.ErrConflict)
			}
		}
	}
	inv.ID = f.id()
	f.invoices[inv.ID] = inv
	return inv.ID, nil
}

func (f *fakeStore) GetInvoice(_ context.Context, id int64) (domain.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return domain.Invoice{}, domain.ErrInvoiceNotFound
	}
	return inv, nil
}

func (f *fakeStore) GetActiveProforma(_ context.Context, workOrderID int64) (*domain.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.WorkOrderID == workOrderID && inv.Kind == domain.InvoiceProforma && inv.Active {
			out := inv
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) DeactivateProformas(_ context.Context, workOrderID int64) error {
	for id, inv := range f.invoices {
		if inv.WorkOrderID == workOrderID && inv.Kind == domain.InvoiceProforma {
			inv.Active = false
			f.invoices[id] = inv
		}
	}
	return nil
}

func (f *fakeStore) MarkInvoicePaidCAS(_ context.Context, id int64, paidAt time.Time) (bool, error) {
	inv, ok := f.invoices[id]
	if !ok || inv.Status == domain.InvoiceCompleted {
		return false, nil
	}
	inv.Status = domain.InvoiceCompleted
	inv.PaidAt = &paidAt
	f.invoices[id] = inv
	return true, nil
}

func (f *fakeStore) CreateDeployment(_ context.Context, d domain.Deployment) (int64, error) {
	for _, existing := range f.deployments {
		if existing.CommitmentID == d.CommitmentID {
			return 0, domain.ErrAlreadyDeployed
		}
	}
	d.ID = f.id()
	f.deployments[d.ID] = d
	return d.ID, nil
}

func (f *fakeStore) GetDeploymentByCommitment(_ context.Context, commitmentID int64) (*domain.Deployment, error) {
	for _, d := range f.deployments {
		if d.CommitmentID == commitmentID {
			out := d
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListDeploymentsByWorkOrder(_ context.Context, workOrderID int64) ([]domain.Deployment, error) {
	var out []domain.Deployment
	for _, d := range f.deployments {
		c, ok := f.commitments[d.CommitmentID]
		if ok && c.WorkOrderID == workOrderID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeNotifier records notifications for assertions.
type fakeNotifier struct {
	sent []port.Notification
}

func (n *fakeNotifier) Notify(_ context.Context, msg port.Notification) {
	n.sent = append(n.sent, msg)
}

// stepClock is a settable clock so tests can move time forward between
// steps, e.g. to upload a banner after a rejection.
type stepClock struct {
	now time.Time
}

func newStepClock(t time.Time) *stepClock {
	return &stepClock{now: t.UTC()}
}

func (c *stepClock) Now() time.Time {
	return c.now
}

func (c *stepClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}
