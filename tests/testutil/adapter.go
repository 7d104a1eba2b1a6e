package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/channel"
)

// Push is one PushQuantity call seen by a FakeAdapter.
type Push struct {
	SKU      string
	Quantity int
}

// FakeAdapter is a scriptable in-memory marketplace. Successful pushes update
// its inventory so a second run observes the corrected quantity.
type FakeAdapter struct {
	mu        sync.Mutex
	ch        channel.Channel
	inventory map[string]int
	order     []string
	orders    []channel.Order

	fetchErr  error
	ordersErr error
	pingErr   error
	pushErrs  map[string]error
	onFetch   func(ctx context.Context)

	pushPanics  map[string]any
	ordersPanic any

	pushes      []Push
	fetchCalls  int
	ordersSince []time.Time
	pingCalls   int
}

// NewFakeAdapter returns an adapter for ch with no listings.
func NewFakeAdapter(ch channel.Channel) *FakeAdapter {
	return &FakeAdapter{
		ch:        ch,
		inventory: make(map[string]int),
		pushErrs:  make(map[string]error),

		pushPanics: make(map[string]any),
	}
}

// WithListing adds or replaces a listing.
func (f *FakeAdapter) WithListing(sku string, qty int) *FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.inventory[sku]; !ok {
		f.order = append(f.order, sku)
	}
	f.inventory[sku] = qty
	return f
}

// WithOrders sets the orders returned by FetchOrders.
func (f *FakeAdapter) WithOrders(orders ...channel.Order) *FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append([]channel.Order(nil), orders...)
	return f
}

// FailFetch makes FetchRemoteInventory fail with err.
func (f *FakeAdapter) FailFetch(err error) *FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
	return f
}

// FailOrders makes FetchOrders fail with err.
func (f *FakeAdapter) FailOrders(err error) *FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ordersErr = err
	return f
}

// FailPing makes Ping fail with err.
func (f *FakeAdapter) FailPing(err error) *FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
	return f
}

// FailPush makes pushes of sku fail with err.
func (f *FakeAdapter) FailPush(sku string, err error) *FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushErrs[sku] = err
	return f
}

// PanicPush makes pushes of sku panic with v.
func (f *FakeAdapter) PanicPush(sku string, v any) *FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushPanics[sku] = v
	return f
}

// PanicOrders makes FetchOrders panic with v.
func (f *FakeAdapter) PanicOrders(v any) *FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ordersPanic = v
	return f
}

// OnFetch runs hook at the start of every FetchRemoteInventory call, outside the
// adapter lock. Tests use it to block or panic mid-run.
func (f *FakeAdapter) OnFetch(hook func(ctx context.Context)) *FakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFetch = hook
	return f
}

func (f *FakeAdapter) Channel() channel.Channel { return f.ch }

func (f *FakeAdapter) FetchRemoteInventory(ctx context.Context) ([]channel.RemoteInventoryItem, error) {
	f.mu.Lock()
	hook := f.onFetch
	f.fetchCalls++
	f.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, channel.Unavailable(f.ch, "fetch inventory", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, channel.Unavailable(f.ch, "fetch inventory", f.fetchErr)
	}
	items := make([]channel.RemoteInventoryItem, 0, len(f.order))
	for _, sku := range f.order {
		items = append(items, channel.RemoteInventoryItem{SKU: sku, Quantity: f.inventory[sku], ExternalID: "ext-" + sku})
	}
	return items, nil
}

func (f *FakeAdapter) FetchOrders(ctx context.Context, since time.Time, statuses []channel.OrderStatus) ([]channel.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ordersSince = append(f.ordersSince, since)
	if f.ordersPanic != nil {
		panic(f.ordersPanic)
	}
	if f.ordersErr != nil {
		return nil, channel.Unavailable(f.ch, "fetch orders", f.ordersErr)
	}
	return append([]channel.Order(nil), f.orders...), nil
}

func (f *FakeAdapter) PushQuantity(ctx context.Context, sku string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.pushPanics[sku]; ok {
		panic(v)
	}
	if err := f.pushErrs[sku]; err != nil {
		return channel.Unavailable(f.ch, "push quantity", err)
	}
	f.pushes = append(f.pushes, Push{SKU: sku, Quantity: quantity})
	if _, ok := f.inventory[sku]; !ok {
		f.order = append(f.order, sku)
	}
	f.inventory[sku] = quantity
	return nil
}

func (f *FakeAdapter) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingCalls++
	if f.pingErr != nil {
		return channel.Unavailable(f.ch, "ping", f.pingErr)
	}
	return nil
}

// Pushes returns the successful pushes in call order.
func (f *FakeAdapter) Pushes() []Push {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Push(nil), f.pushes...)
}

// FetchCalls returns how many times FetchRemoteInventory ran.
func (f *FakeAdapter) FetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

// OrdersSince returns the since argument of every FetchOrders call.
func (f *FakeAdapter) OrdersSince() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.ordersSince...)
}

// RemoteQuantity returns the listing quantity of sku.
func (f *FakeAdapter) RemoteQuantity(sku string) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.inventory[sku]
	return q, ok
}
