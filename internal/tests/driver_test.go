package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"taxi/internal/domain"
	"taxi/internal/service"
)

// ──────────────────────────────────────────────
// 3. DRIVER ACTIONS
// ──────────────────────────────────────────────

func newOrder(t *testing.T, f *Fixture, passengerID int64) *domain.Order {
	t.Helper()
	f.AddPassenger(passengerID, "+100")
	passengers := service.NewPassengerService(f.Users, f.Orders)
	order, err := passengers.RequestRide(context.Background(), service.CreateOrderRequest{
		PassengerID: passengerID,
		Pickup:      "A",
		Destination: "B",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return order
}

func TestDriver_NonDriverIsRejectedBeforeStore(t *testing.T) {
	t.Parallel()

	f := NewFixture()
	order := newOrder(t, f, 1)
	drivers := service.NewDriverService(f.Drivers, f.Orders, 0)
	ctx := context.Background()

	if _, err := drivers.Accept(ctx, order.ID, 99); !errors.Is(err, service.ErrNotDriver) {
		t.Errorf("expected ErrNotDriver, got %v", err)
	}
	if _, err := drivers.NewOrders(ctx, 99, 0); !errors.Is(err, service.ErrNotDriver) {
		t.Errorf("expected ErrNotDriver, got %v", err)
	}
	if _, err := drivers.ActiveOrder(ctx, 99); !errors.Is(err, service.ErrNotDriver) {
		t.Errorf("expected ErrNotDriver, got %v", err)
	}
	if f.Orders.TransitionCallCount != 0 {
		t.Errorf("expected no transition calls, got %d", f.Orders.TransitionCallCount)
	}
}

func TestDriver_NewOrdersUsesDefaultLimit(t *testing.T) {
	t.Parallel()

	f := NewFixture()
	f.AddDriver(10)
	for i := int64(1); i <= 4; i++ {
		newOrder(t, f, i)
	}
	drivers := service.NewDriverService(f.Drivers, f.Orders, 3)
	ctx := context.Background()

	orders, err := drivers.NewOrders(ctx, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 3 {
		t.Errorf("expected default limit 3, got %d", len(orders))
	}

	orders, err = drivers.NewOrders(ctx, 10, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 4 {
		t.Errorf("expected 4 orders, got %d", len(orders))
	}
	for i := 1; i < len(orders); i++ {
		if orders[i-1].ID > orders[i].ID {
			t.Errorf("expected oldest first, got %d before %d", orders[i-1].ID, orders[i].ID)
		}
	}
}

func TestDriver_AcceptReturnsRefreshedOrder(t *testing.T) {
	t.Parallel()

	f := NewFixture()
	f.AddDriver(10)
	order := newOrder(t, f, 1)
	drivers := service.NewDriverService(f.Drivers, f.Orders, 0)

	accepted, err := drivers.Accept(context.Background(), order.ID, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accepted.Status != domain.OrderStatusAccepted {
		t.Errorf("expected accepted, got %s", accepted.Status)
	}
	if !accepted.AssignedTo(10) {
		t.Error("expected order assigned to driver 10")
	}
}

func TestDriver_GuardFailuresAreUnavailable(t *testing.T) {
	t.Parallel()

	f := NewFixture()
	f.AddDriver(10)
	f.AddDriver(11)
	order := newOrder(t, f, 1)
	drivers := service.NewDriverService(f.Drivers, f.Orders, 0)
	ctx := context.Background()

	if _, err := drivers.Complete(ctx, order.ID, 10); !errors.Is(err, service.ErrOrderUnavailable) {
		t.Errorf("complete from new: expected ErrOrderUnavailable, got %v", err)
	}

	if _, err := drivers.Accept(ctx, order.ID, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := drivers.Accept(ctx, order.ID, 11); !errors.Is(err, service.ErrOrderUnavailable) {
		t.Errorf("second accept: expected ErrOrderUnavailable, got %v", err)
	}
	if _, err := drivers.MarkArrived(ctx, order.ID, 11); !errors.Is(err, service.ErrOrderUnavailable) {
		t.Errorf("wrong driver: expected ErrOrderUnavailable, got %v", err)
	}
	if _, err := drivers.MarkArrived(ctx, 9999, 10); !errors.Is(err, service.ErrOrderUnavailable) {
		t.Errorf("missing order: expected ErrOrderUnavailable, got %v", err)
	}
	if _, err := drivers.Accept(ctx, 0, 10); !errors.Is(err, service.ErrInvalidOrderID) {
		t.Errorf("expected ErrInvalidOrderID, got %v", err)
	}
}

func TestDriver_StorageFaultIsNotUnavailable(t *testing.T) {
	t.Parallel()

	f := NewFixture()
	f.AddDriver(10)
	order := newOrder(t, f, 1)
	fault := errors.New("deadline exceeded")
	f.Orders.TransitionError = fault
	drivers := service.NewDriverService(f.Drivers, f.Orders, 0)

	_, err := drivers.Accept(context.Background(), order.ID, 10)
	if !errors.Is(err, fault) {
		t.Errorf("expected storage fault, got %v", err)
	}
	if errors.Is(err, service.ErrOrderUnavailable) {
		t.Error("storage fault must not look like a guard failure")
	}
}

func TestDriver_ConcurrentAcceptExactlyOneWins(t *testing.T) {
	t.Parallel()

	f := NewFixture()
	order := newOrder(t, f, 1)
	const n = 20
	for i := int64(1); i <= n; i++ {
		f.AddDriver(100 + i)
	}
	drivers := service.NewDriverService(f.Drivers, f.Orders, 0)

	var wg sync.WaitGroup
	var wins, unavailable int32
	for i := int64(1); i <= n; i++ {
		wg.Add(1)
		go func(driverID int64) {
			defer wg.Done()
			_, err := drivers.Accept(context.Background(), order.ID, driverID)
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, service.ErrOrderUnavailable):
				atomic.AddInt32(&unavailable, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(100 + i)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly 1 winner, got %d", wins)
	}
	if unavailable != n-1 {
		t.Errorf("expected %d losers, got %d", n-1, unavailable)
	}
}

// ──────────────────────────────────────────────
// 4. ADMIN ACTIONS
// ──────────────────────────────────────────────

func TestAdmin_AddDriverDefaultsName(t *testing.T) {
	t.Parallel()

	f := NewFixture()
	admin := service.NewAdminService(f.Drivers, f.Orders)
	ctx := context.Background()

	driver, err := admin.AddDriver(ctx, 42, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.Name != "driver_42" {
		t.Errorf("expected default name driver_42, got %q", driver.Name)
	}
	if driver.AddedAt.IsZero() {
		t.Error("expected the stored registration time")
	}

	if _, err := admin.AddDriver(ctx, 42, "again"); !errors.Is(err, service.ErrDriverExists) {
		t.Errorf("expected ErrDriverExists, got %v", err)
	}
}

func TestAdmin_RemoveDriver(t *testing.T) {
	t.Parallel()

	f := NewFixture()
	f.AddDriver(10)
	admin := service.NewAdminService(f.Drivers, f.Orders)
	ctx := context.Background()

	if err := admin.RemoveDriver(ctx, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := admin.RemoveDriver(ctx, 10); !errors.Is(err, service.ErrDriverNotFound) {
		t.Errorf("expected ErrDriverNotFound, got %v", err)
	}

	list, err := admin.ListDrivers(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty registry, got %d", len(list))
	}
}

func TestAdmin_Stats(t *testing.T) {
	t.Parallel()

	f := NewFixture()
	f.AddDriver(10)
	first := newOrder(t, f, 1)
	newOrder(t, f, 2)
	drivers := service.NewDriverService(f.Drivers, f.Orders, 0)
	if _, err := drivers.Accept(context.Background(), first.ID, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := service.NewAdminService(f.Drivers, f.Orders).Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 2 || stats.Count(domain.OrderStatusNew) != 1 || stats.Count(domain.OrderStatusAccepted) != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestAccess_IsAdmin(t *testing.T) {
	t.Parallel()

	access := service.NewAccess([]int64{1, 2})
	if !access.IsAdmin(1) || !access.IsAdmin(2) {
		t.Error("expected listed ids to be admins")
	}
	if access.IsAdmin(3) {
		t.Error("unlisted id must not be admin")
	}

	var none *service.Access
	if none.IsAdmin(1) {
		t.Error("nil allow-list grants nothing")
	}
}
