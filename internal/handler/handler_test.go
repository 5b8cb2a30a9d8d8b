package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxi/internal/handler"
	"taxi/internal/middleware"
	"taxi/internal/service"
	"taxi/internal/tests"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	passengerID = int64(100)
	driverID    = int64(200)
	strangerID  = int64(300)
	adminID     = int64(1)
)

type testEnv struct {
	fixture *tests.Fixture
	router  *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	f := tests.NewFixture()

	passengerService := service.NewPassengerService(f.Users, f.Orders)
	driverService := service.NewDriverService(f.Drivers, f.Orders, service.DefaultNewOrdersLimit)
	adminService := service.NewAdminService(f.Drivers, f.Orders)

	users := handler.NewUserHandler(passengerService)
	orders := handler.NewOrderHandler(passengerService)
	drivers := handler.NewDriverHandler(driverService)
	admin := handler.NewAdminHandler(adminService)

	r := gin.New()
	v1 := r.Group("/v1", middleware.RequireActor())
	v1.POST("/users", users.Start)
	v1.GET("/users/:id", users.GetProfile)
	v1.PUT("/users/:id/phone", users.SavePhone)
	v1.POST("/orders", orders.CreateOrder)
	v1.GET("/orders/active", orders.GetActive)
	v1.GET("/orders/:id", orders.GetOrder)
	v1.GET("/driver/orders", drivers.ListNew)
	v1.GET("/driver/orders/active", drivers.GetActive)
	v1.POST("/driver/orders/:id/accept", drivers.Accept)
	v1.POST("/driver/orders/:id/arrive", drivers.Arrive)
	v1.POST("/driver/orders/:id/complete", drivers.Complete)
	adminGroup := v1.Group("/admin", middleware.RequireAdmin(service.NewAccess([]int64{adminID})))
	adminGroup.POST("/drivers", admin.AddDriver)
	adminGroup.GET("/drivers", admin.ListDrivers)
	adminGroup.DELETE("/drivers/:id", admin.RemoveDriver)
	adminGroup.GET("/stats", admin.Stats)

	return &testEnv{fixture: f, router: r}
}

func (e *testEnv) do(t *testing.T, method, path string, actor int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorHeader, strconv.FormatInt(actor, 10))

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// createOrder registers a passenger with a phone and places an order.
func (e *testEnv) createOrder(t *testing.T) handler.OrderResponse {
	t.Helper()
	e.fixture.AddPassenger(passengerID, "+15550100")
	w := e.do(t, http.MethodPost, "/v1/orders", passengerID, handler.CreateOrderRequest{Pickup: "Main St 1", Destination: "Airport"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[handler.OrderResponse](t, w)
}

func TestUserHandler_StartAndProfile(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/users", passengerID, handler.StartRequest{Name: "  Alice "})
	require.Equal(t, http.StatusOK, w.Code)
	user := decode[handler.UserResponse](t, w)
	assert.Equal(t, passengerID, user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Nil(t, user.Phone)

	w = env.do(t, http.MethodPut, "/v1/users/100/phone", passengerID, handler.SavePhoneRequest{Phone: "+15550100"})
	require.Equal(t, http.StatusOK, w.Code)
	user = decode[handler.UserResponse](t, w)
	require.NotNil(t, user.Phone)
	assert.Equal(t, "+15550100", *user.Phone)

	w = env.do(t, http.MethodGet, "/v1/users/100", passengerID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserHandler_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.fixture.AddPassenger(passengerID, "")

	tests := []struct {
		name   string
		method string
		path   string
		actor  int64
		body   any
		want   int
	}{
		{"someone else's profile", http.MethodGet, "/v1/users/100", strangerID, nil, http.StatusForbidden},
		{"malformed id", http.MethodGet, "/v1/users/abc", passengerID, nil, http.StatusBadRequest},
		{"unknown user", http.MethodGet, "/v1/users/300", strangerID, nil, http.StatusNotFound},
		{"blank phone", http.MethodPut, "/v1/users/100/phone", passengerID, handler.SavePhoneRequest{Phone: " "}, http.StatusBadRequest},
		{"phone for unknown user", http.MethodPut, "/v1/users/300/phone", strangerID, handler.SavePhoneRequest{Phone: "1"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.actor, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	env := newTestEnv(t)

	t.Run("requires phone", func(t *testing.T) {
		env.fixture.AddPassenger(strangerID, "")
		w := env.do(t, http.MethodPost, "/v1/orders", strangerID, handler.CreateOrderRequest{Pickup: "a", Destination: "b"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("blank destination", func(t *testing.T) {
		env.fixture.AddPassenger(passengerID, "+15550100")
		w := env.do(t, http.MethodPost, "/v1/orders", passengerID, handler.CreateOrderRequest{Pickup: "a", Destination: "  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("second order returns the existing one", func(t *testing.T) {
		first := env.createOrder(t)
		assert.Equal(t, "new", first.Status)
		assert.Nil(t, first.DriverID)

		w := env.do(t, http.MethodPost, "/v1/orders", passengerID, handler.CreateOrderRequest{Pickup: "x", Destination: "y"})
		require.Equal(t, http.StatusConflict, w.Code)
		resp := decode[handler.ActiveOrderResponse](t, w)
		require.NotNil(t, resp.Order)
		assert.Equal(t, first.ID, resp.Order.ID)
	})
}

func TestOrderHandler_StorageFaultIsInternalError(t *testing.T) {
	env := newTestEnv(t)
	env.fixture.AddPassenger(passengerID, "+15550100")
	env.fixture.Orders.CreateError = errors.New("disk full")

	w := env.do(t, http.MethodPost, "/v1/orders", passengerID, handler.CreateOrderRequest{Pickup: "a", Destination: "b"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk full")
}

func TestOrderHandler_ActiveAndVisibility(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/orders/active", passengerID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	order := env.createOrder(t)

	w = env.do(t, http.MethodGet, "/v1/orders/active", passengerID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, order.ID, decode[handler.OrderResponse](t, w).ID)

	path := "/v1/orders/" + strconv.FormatInt(order.ID, 10)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, passengerID, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, strangerID, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/v1/orders/999", passengerID, nil).Code)
}

func TestDriverHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.fixture.AddDriver(driverID)
	order := env.createOrder(t)
	base := "/v1/driver/orders/" + strconv.FormatInt(order.ID, 10)

	w := env.do(t, http.MethodGet, "/v1/driver/orders?limit=5", driverID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]handler.OrderResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, order.ID, list[0].ID)

	// Complete before arrival is a guard failure.
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, base+"/complete", driverID, nil).Code)

	w = env.do(t, http.MethodPost, base+"/accept", driverID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	accepted := decode[handler.OrderResponse](t, w)
	assert.Equal(t, "accepted", accepted.Status)
	require.NotNil(t, accepted.DriverID)
	assert.Equal(t, driverID, *accepted.DriverID)

	w = env.do(t, http.MethodGet, "/v1/driver/orders/active", driverID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, order.ID, decode[handler.OrderResponse](t, w).ID)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, base+"/accept", driverID, nil).Code)

	w = env.do(t, http.MethodPost, base+"/arrive", driverID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "arrived", decode[handler.OrderResponse](t, w).Status)

	w = env.do(t, http.MethodPost, base+"/complete", driverID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode[handler.OrderResponse](t, w).Status)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/v1/orders/active", passengerID, nil).Code)
}

func TestDriverHandler_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.fixture.AddDriver(driverID)
	order := env.createOrder(t)
	accept := "/v1/driver/orders/" + strconv.FormatInt(order.ID, 10) + "/accept"

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, accept, strangerID, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/v1/driver/orders", strangerID, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/v1/driver/orders?limit=-1", driverID, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/v1/driver/orders/0/accept", driverID, nil).Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/v1/driver/orders/999/accept", driverID, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/v1/driver/orders/active", driverID, nil).Code)
}

func TestAdminHandler(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/admin/drivers", passengerID, handler.AddDriverRequest{ID: driverID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/v1/admin/drivers", adminID, handler.AddDriverRequest{ID: driverID})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, driverID, decode[handler.DriverResponse](t, w).ID)

	w = env.do(t, http.MethodPost, "/v1/admin/drivers", adminID, handler.AddDriverRequest{ID: driverID, Name: "again"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/v1/admin/drivers", adminID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]handler.DriverResponse](t, w), 1)

	env.createOrder(t)
	w = env.do(t, http.MethodGet, "/v1/admin/stats", adminID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[handler.StatsResponse](t, w)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus["new"])
	assert.Equal(t, int64(0), stats.ByStatus["completed"])

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/v1/admin/drivers/200", adminID, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/v1/admin/drivers/200", adminID, nil).Code)
}
