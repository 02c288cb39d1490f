package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"spiceMarket/domain"
	"spiceMarket/pkg/metrics"
)

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseUrl   string
	Timeout   time.Duration
}

type RazorpayRepository struct {
	razorpayConfig RazorpayConfig
	client         *http.Client
}

func NewRazorpayRepository(cfg RazorpayConfig) *RazorpayRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &RazorpayRepository{
		razorpayConfig: cfg,
		client:         &http.Client{Timeout: timeout},
	}
}

func (r *RazorpayRepository) KeyID() string {
	return r.razorpayConfig.KeyID
}

// CreateOrder registers a gateway order. Amount is in the currency's
// smallest unit (paise for INR).
func (r *RazorpayRepository) CreateOrder(ctx context.Context, req domain.RazorpayOrderRequest) (order domain.RazorpayOrder, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.GatewayLatency.WithLabelValues("create_order", outcome).Observe(time.Since(start).Seconds())
	}()

	payload, err := json.Marshal(req)
	if err != nil {
		return domain.RazorpayOrder{}, fmt.Errorf("failed to marshal json payload: %w", err)
	}

	url := strings.TrimRight(r.razorpayConfig.BaseUrl, "/") + "/orders"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.RazorpayOrder{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(r.razorpayConfig.KeyID, r.razorpayConfig.KeySecret)

	res, err := r.client.Do(httpReq)
	if err != nil {
		return domain.RazorpayOrder{}, fmt.Errorf("razorpay request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return domain.RazorpayOrder{}, fmt.Errorf("failed to read razorpay response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var errRes domain.RazorpayErrorResponse
		if json.Unmarshal(body, &errRes) == nil && errRes.Error.Description != "" {
			return domain.RazorpayOrder{}, fmt.Errorf("razorpay returned %d: %s: %s", res.StatusCode, errRes.Error.Code, errRes.Error.Description)
		}
		return domain.RazorpayOrder{}, fmt.Errorf("razorpay returned %d", res.StatusCode)
	}

	if err := json.Unmarshal(body, &order); err != nil {
		return domain.RazorpayOrder{}, fmt.Errorf("failed to decode razorpay order: %w", err)
	}

	if order.ID == "" {
		return domain.RazorpayOrder{}, fmt.Errorf("razorpay response carried no order id")
	}

	return order, nil
}

// Signature is the hex HMAC-SHA256 of "<order_id>|<payment_id>" keyed with
// the key secret, as produced by the checkout widget.
func (r *RazorpayRepository) Signature(razorpayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(r.razorpayConfig.KeySecret))
	mac.Write([]byte(razorpayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature compares in constant time.
func (r *RazorpayRepository) VerifyPaymentSignature(razorpayOrderID, paymentID, signature string) bool {
	expected := r.Signature(razorpayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
