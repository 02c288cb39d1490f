//go:build !integration

package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spiceMarket/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(url string) *RazorpayRepository {
	return NewRazorpayRepository(RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_test_secret",
		BaseUrl:   url,
		Timeout:   2 * time.Second,
	})
}

func TestCreateOrder(t *testing.T) {
	var got domain.RazorpayOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_ABC","entity":"order","amount":80000,"currency":"INR","receipt":"rcpt_1","status":"created"}`))
	}))
	defer srv.Close()

	order, err := newTestRepo(srv.URL+"/v1").CreateOrder(context.Background(), domain.RazorpayOrderRequest{
		Amount:   80000,
		Currency: "INR",
		Receipt:  "rcpt_1",
	})
	require.NoError(t, err)

	assert.Equal(t, "order_ABC", order.ID)
	assert.Equal(t, int64(80000), order.Amount)
	assert.Equal(t, int64(80000), got.Amount)
	assert.Equal(t, "rcpt_1", got.Receipt)
}

func TestCreateOrder_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer srv.Close()

	_, err := newTestRepo(srv.URL).CreateOrder(context.Background(), domain.RazorpayOrderRequest{Amount: 1, Currency: "INR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be at least 100")
}

func TestCreateOrder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestRepo(url).CreateOrder(context.Background(), domain.RazorpayOrderRequest{Amount: 100, Currency: "INR"})
	assert.Error(t, err)
}

func TestCreateOrder_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestRepo(srv.URL).CreateOrder(context.Background(), domain.RazorpayOrderRequest{Amount: 100, Currency: "INR"})
	assert.Error(t, err)
}

func TestVerifyPaymentSignature(t *testing.T) {
	repo := newTestRepo("http://unused")
	sig := repo.Signature("order_ABC", "pay_XYZ")

	assert.Len(t, sig, 64)
	assert.True(t, repo.VerifyPaymentSignature("order_ABC", "pay_XYZ", sig))
	assert.False(t, repo.VerifyPaymentSignature("order_ABC", "pay_OTHER", sig))
	tampered := sig[:63] + "0"
	if sig[63] == '0' {
		tampered = sig[:63] + "1"
	}
	assert.False(t, repo.VerifyPaymentSignature("order_ABC", "pay_XYZ", tampered))
	assert.False(t, repo.VerifyPaymentSignature("order_ABC", "pay_XYZ", ""))
}
