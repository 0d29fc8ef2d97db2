package control

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmhmddd/PowerEV-sub000/internal/backend"
	"github.com/mmhmddd/PowerEV-sub000/internal/models"
)

func newOrderTestController(t *testing.T, handler http.HandlerFunc) *OrderController {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := backend.NewClient(srv.URL, 5*time.Second, nil, nil)
	return NewOrderController(client.Orders(), nil)
}

func TestOrderStatusUpdateRejectsUnknownValue(t *testing.T) {
	ctl := newOrderTestController(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	err := ctl.UpdateStatus(context.Background(), "o1", "teleported")
	require.Error(t, err)
	assert.Equal(t, "حالة الطلب غير صالحة", err.Error())

	err = ctl.UpdatePaymentStatus(context.Background(), "o1", "maybe")
	require.Error(t, err)
	assert.Equal(t, "حالة الدفع غير صالحة", err.Error())
}

func TestOrderStatusUpdateToastsAfterReload(t *testing.T) {
	ctl := newOrderTestController(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/orders/o1/status":
			w.Write([]byte(`{}`))
		case r.Method == http.MethodGet && r.URL.Path == "/orders":
			w.Write([]byte(`{"data":[]}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	require.NoError(t, ctl.UpdateStatus(context.Background(), "o1", models.OrderStatusShipped))
	vm := ctl.Snapshot()
	assert.Equal(t, msgStatusUpdated, vm.Toast)
	assert.Empty(t, vm.Error)
}

func TestOrderStatusUpdateReloadFailureKeepsError(t *testing.T) {
	ctl := newOrderTestController(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/orders/o1/status":
			w.Write([]byte(`{}`))
		case r.Method == http.MethodGet && r.URL.Path == "/orders":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"المنصة غير متاحة"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	err := ctl.UpdateStatus(context.Background(), "o1", models.OrderStatusShipped)
	require.Error(t, err)

	// The reload failure message stays on screen with no success toast on
	// top of it.
	vm := ctl.Snapshot()
	assert.Empty(t, vm.Toast)
	assert.Equal(t, "المنصة غير متاحة", vm.Error)
}
