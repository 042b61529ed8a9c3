package public

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/plpainel/tokenapi/internal/mercadopago"
	"github.com/plpainel/tokenapi/internal/provider"
	"github.com/plpainel/tokenapi/internal/service"

	"github.com/gin-gonic/gin"
)

type unresolvableLookup struct{}

func (unresolvableLookup) GetPayment(context.Context, string) (*mercadopago.Payment, int, error) {
	return nil, -1, mercadopago.ErrUnresolvable
}

func newWebhookTestHandler(lookup service.PaymentLookup) *Handler {
	reconcile := service.NewReconcileService(nil, nil, nil, lookup, nil, nil)
	return &Handler{Container: &provider.Container{ReconcileService: reconcile}}
}

func TestMercadoPagoWebhookAcksBodyWithoutPaymentID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook/mercadopago", strings.NewReader(`{"action":"payment.updated"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h := newWebhookTestHandler(unresolvableLookup{})
	h.MercadoPagoWebhook(c)

	if w.Code != http.StatusOK {
		t.Fatalf("webhook must ack with 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"ok":true`) {
		t.Fatalf("ack should carry ok:true, got %s", body)
	}
	if !strings.Contains(body, "no_payment_id") {
		t.Fatalf("ack reason want no_payment_id, got %s", body)
	}
}

func TestMercadoPagoWebhookAcksUnresolvablePayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook/mercadopago", strings.NewReader(`{"data":{"id":"987654"}}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h := newWebhookTestHandler(unresolvableLookup{})
	h.MercadoPagoWebhook(c)

	if w.Code != http.StatusOK {
		t.Fatalf("webhook must ack with 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "provider_unresolvable") {
		t.Fatalf("ack reason want provider_unresolvable, got %s", body)
	}
	if !strings.Contains(body, "987654") {
		t.Fatalf("ack should echo the payment id, got %s", body)
	}
}

func TestMercadoPagoWebhookProbe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payments/webhook/mercadopago", nil)

	h := &Handler{}
	h.MercadoPagoWebhookProbe(c)

	if w.Code != http.StatusOK {
		t.Fatalf("probe status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("probe body want ok:true, got %s", w.Body.String())
	}
}
