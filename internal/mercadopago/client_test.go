package mercadopago

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClientRequiresTokens(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected config invalid error, got: %v", err)
	}
}

func TestGetPaymentResolvesWithFirstCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/123" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer live-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":123,"status":"Approved","external_reference":" ORD-1 ","transaction_amount":40.0,"currency_id":"BRL"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{
		BaseURL:      server.URL,
		AccessTokens: []string{"live-token", "sandbox-token"},
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	payment, credential, err := client.GetPayment(context.Background(), "123")
	if err != nil {
		t.Fatalf("GetPayment error: %v", err)
	}
	if credential != 0 {
		t.Fatalf("expected credential index 0, got %d", credential)
	}
	if payment.Status != "approved" {
		t.Fatalf("status not normalized, got: %s", payment.Status)
	}
	if payment.ExternalReference != "ORD-1" {
		t.Fatalf("external reference not trimmed, got: %q", payment.ExternalReference)
	}
	if payment.TransactionAmount != 40.0 {
		t.Fatalf("unexpected amount: %v", payment.TransactionAmount)
	}
}

func TestGetPaymentFallsBackToSecondCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer sandbox-token" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":55,"status":"pending","external_reference":"ORD-2"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(Config{
		BaseURL:      server.URL,
		AccessTokens: []string{"live-token", "sandbox-token"},
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	payment, credential, err := client.GetPayment(context.Background(), "55")
	if err != nil {
		t.Fatalf("GetPayment error: %v", err)
	}
	if credential != 1 {
		t.Fatalf("expected credential index 1, got %d", credential)
	}
	if payment.ExternalReference != "ORD-2" {
		t.Fatalf("unexpected external reference: %q", payment.ExternalReference)
	}
}

func TestGetPaymentUnresolvable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(Config{
		BaseURL:      server.URL,
		AccessTokens: []string{"live-token", "sandbox-token"},
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	if _, _, err := client.GetPayment(context.Background(), "999"); !errors.Is(err, ErrUnresolvable) {
		t.Fatalf("expected unresolvable error, got: %v", err)
	}
}

func TestGetPaymentMalformedBodyUnresolvable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client, err := NewClient(Config{
		BaseURL:      server.URL,
		AccessTokens: []string{"token"},
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	if _, _, err := client.GetPayment(context.Background(), "1"); !errors.Is(err, ErrUnresolvable) {
		t.Fatalf("expected unresolvable error, got: %v", err)
	}
}

func TestGetPaymentTimeoutUnresolvable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"id":1,"status":"approved"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{
		BaseURL:      server.URL,
		AccessTokens: []string{"token"},
		Timeout:      20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	if _, _, err := client.GetPayment(context.Background(), "1"); !errors.Is(err, ErrUnresolvable) {
		t.Fatalf("expected unresolvable error, got: %v", err)
	}
}
