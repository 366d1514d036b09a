package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Malcolmik/ambo-backend/internal/core/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Secret: "sk_test_secret"}, zerolog.Nop())
}

func TestInitializeTransaction(t *testing.T) {
	var gotAuth string
	var gotBody initializeRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transaction/initialize" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]string{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         "AMB-1-AAAAAA",
			},
		})
	})

	session, err := client.InitializeTransaction(context.Background(), ports.InitializeTransactionRequest{
		Email:       "payer@acme.test",
		AmountMinor: 160000,
		Currency:    "NGN",
		Reference:   "AMB-1-AAAAAA",
		Metadata:    ports.CheckoutMetadata{SchemaVersion: 1, ClientID: "cli_1", PackageType: "AMBO CLASSIC"},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if session.CheckoutURL != "https://checkout.paystack.com/abc123" {
		t.Errorf("unexpected checkout URL: %s", session.CheckoutURL)
	}
	if gotAuth != "Bearer sk_test_secret" {
		t.Errorf("unexpected auth header: %s", gotAuth)
	}
	if gotBody.Amount != 160000 || gotBody.Reference != "AMB-1-AAAAAA" {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
	if gotBody.Metadata.ClientID != "cli_1" {
		t.Errorf("metadata not carried on checkout: %+v", gotBody.Metadata)
	}
}

func TestInitializeTransaction_GatewayError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	})

	if _, err := client.InitializeTransaction(context.Background(), ports.InitializeTransactionRequest{
		Email: "payer@acme.test", AmountMinor: 100, Reference: "AMB-1-AAAAAA",
	}); err == nil {
		t.Fatal("expected an error for a non-2xx answer")
	}
}

func TestVerifyTransaction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/AMB-2-BBBBBB" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"status": "success",
				"reference": "AMB-2-BBBBBB",
				"amount": 120000,
				"currency": "NGN",
				"channel": "card",
				"paid_at": "2026-08-26T12:00:00.000Z",
				"metadata": {"schema_version": 1, "client_id": "cli_1", "package_type": "AMBO CLASSIC"}
			}
		}`))
	})

	vt, err := client.VerifyTransaction(context.Background(), "AMB-2-BBBBBB")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if vt.Status != ports.GatewayTxSuccess || vt.AmountMinor != 120000 || vt.Channel != "card" {
		t.Errorf("unexpected verified transaction: %+v", vt)
	}
	if vt.PaidAt.IsZero() {
		t.Error("paid_at not parsed")
	}
	if len(vt.Raw) == 0 {
		t.Error("raw response bytes must be preserved")
	}
	if vt.Metadata.ClientID != "cli_1" {
		t.Errorf("metadata not decoded: %+v", vt.Metadata)
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused", Secret: "sk_test_secret"}, zerolog.Nop())

	body := []byte(`{"event":"charge.success","data":{"reference":"AMB-3-CCCCCC"}}`)
	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	if !client.VerifyWebhookSignature(body, sig) {
		t.Error("expected the genuine signature to verify")
	}
	if client.VerifyWebhookSignature(body, sig[:len(sig)-2]+"00") {
		t.Error("tampered signature must not verify")
	}
	// Even a single re-serialized byte breaks the check.
	altered := append([]byte(nil), body...)
	altered[len(altered)-2] = ' '
	if client.VerifyWebhookSignature(altered, sig) {
		t.Error("signature must cover the exact raw bytes")
	}
}
