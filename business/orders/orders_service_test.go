//go:build !integration

package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"spiceMarket/domain"
	"spiceMarket/internal/repository/razorpay"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrdersRepo struct {
	mu     sync.Mutex
	orders map[uint64]domain.Order
	nextID uint64
	writes int
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{orders: make(map[uint64]domain.Order)}
}

func (r *fakeOrdersRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	order.ID = r.nextID
	order.CreatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrdersRepo) FindByID(_ context.Context, id uint64) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (r *fakeOrdersRepo) FindByRazorpayOrderID(_ context.Context, rzpID string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.RazorpayOrderID == rzpID {
			return o, nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

func (r *fakeOrdersRepo) FindAll(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if filter.Status == "" || o.Status == filter.Status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrdersRepo) FindByUserID(ctx context.Context, userID uint, filter domain.OrderFilter) ([]domain.Order, error) {
	all, _ := r.FindAll(ctx, filter)
	var out []domain.Order
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrdersRepo) UpdatePayment(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	stored.PaymentStatus = order.PaymentStatus
	stored.RazorpayPaymentID = order.RazorpayPaymentID
	stored.RazorpaySignature = order.RazorpaySignature
	stored.FailureReason = order.FailureReason
	r.orders[order.ID] = stored
	r.writes++
	return nil
}

func (r *fakeOrdersRepo) UpdateStatus(_ context.Context, id uint64, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	stored.Status = status
	r.orders[id] = stored
	r.writes++
	return nil
}

type fakeProducts map[uint64]domain.Product

func (f fakeProducts) FindByIDs(_ context.Context, ids []uint64) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeGateway signs like the real client but never leaves the process.
type fakeGateway struct {
	*razorpay.RazorpayRepository
	requests []domain.RazorpayOrderRequest
	fail     error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		RazorpayRepository: razorpay.NewRazorpayRepository(razorpay.RazorpayConfig{
			KeyID:     "rzp_test_key",
			KeySecret: "rzp_test_secret",
		}),
	}
}

func (g *fakeGateway) CreateOrder(_ context.Context, req domain.RazorpayOrderRequest) (domain.RazorpayOrder, error) {
	if g.fail != nil {
		return domain.RazorpayOrder{}, g.fail
	}
	g.requests = append(g.requests, req)
	return domain.RazorpayOrder{
		ID:       fmt.Sprintf("order_%d", len(g.requests)),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

type recordingCarts struct {
	cleared []string
}

func (c *recordingCarts) ClearCart(_ context.Context, cartID string) (*domain.Cart, error) {
	c.cleared = append(c.cleared, cartID)
	return domain.NewCart(cartID), nil
}

type fixture struct {
	svc     *OrdersService
	repo    *fakeOrdersRepo
	gateway *fakeGateway
	carts   *recordingCarts
	catalog fakeProducts
}

func newFixture() *fixture {
	catalog := fakeProducts{
		1: {ID: 1, Name: "Product A", Packs: []domain.ProductPack{
			{PackSize: "250g", Price: decimal.NewFromInt(200)},
			{PackSize: "500g", Price: decimal.NewFromInt(380)},
		}},
		2: {ID: 2, Name: "Product B", Packs: []domain.ProductPack{
			{PackSize: "500g", Price: decimal.NewFromInt(400)},
		}},
		3: {ID: 3, Name: "Saffron", Packs: []domain.ProductPack{
			{PackSize: "1g", Price: decimal.RequireFromString("249.99")},
		}},
	}

	f := &fixture{
		repo:    newFakeOrdersRepo(),
		gateway: newFakeGateway(),
		carts:   &recordingCarts{},
		catalog: catalog,
	}
	f.svc = NewOrdersService(f.repo, catalog, f.gateway, f.carts, validator.New(), "INR")
	return f
}

func checkoutInput(items ...OrderItemInput) CreateOrderInput {
	return CreateOrderInput{
		UserID:      7,
		Username:    "asha",
		PhoneNumber: "9876543210",
		Address:     "12 Spice Lane, Kochi",
		Items:       items,
	}
}

func TestCreateOrder_Scenario(t *testing.T) {
	f := newFixture()

	session, err := f.svc.CreateOrder(context.Background(), checkoutInput(
		OrderItemInput{ProductID: 1, PackSize: "250g", Quantity: 2},
		OrderItemInput{ProductID: 2, PackSize: "500g", Quantity: 1},
	))
	require.NoError(t, err)

	assert.True(t, session.TotalAmount.Equal(decimal.NewFromInt(800)), "total %s", session.TotalAmount)
	assert.Equal(t, int64(80000), session.AmountSubunits)
	assert.Equal(t, "order_1", session.RazorpayOrderID)
	assert.Equal(t, "rzp_test_key", session.KeyID)

	require.Len(t, f.gateway.requests, 1)
	assert.Equal(t, int64(80000), f.gateway.requests[0].Amount)
	assert.Equal(t, "INR", f.gateway.requests[0].Currency)
	assert.LessOrEqual(t, len(f.gateway.requests[0].Receipt), 40)

	order, err := f.repo.FindByID(context.Background(), session.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, "order_1", order.RazorpayOrderID)
	assert.Equal(t, "asha", order.Username)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Product A", order.Items[0].Name)
	assert.True(t, order.Items[0].LineTotal.Equal(decimal.NewFromInt(400)))
	assert.True(t, order.Items[1].LineTotal.Equal(decimal.NewFromInt(400)))
}

func TestCreateOrder_TotalUsesCatalogPrices(t *testing.T) {
	f := newFixture()

	session, err := f.svc.CreateOrder(context.Background(), checkoutInput(
		OrderItemInput{ProductID: 3, PackSize: "1g", Quantity: 3},
		OrderItemInput{ProductID: 1, PackSize: "500g", Quantity: 1},
	))
	require.NoError(t, err)

	want := decimal.RequireFromString("249.99").Mul(decimal.NewFromInt(3)).Add(decimal.NewFromInt(380))
	assert.True(t, session.TotalAmount.Equal(want))
	assert.Equal(t, int64(112997), session.AmountSubunits)
}

func TestCreateOrder_SnapshotSurvivesCatalogEdit(t *testing.T) {
	f := newFixture()

	session, err := f.svc.CreateOrder(context.Background(), checkoutInput(
		OrderItemInput{ProductID: 2, PackSize: "500g", Quantity: 1},
	))
	require.NoError(t, err)

	edited := f.catalog[2]
	edited.Name = "Renamed"
	edited.Packs = []domain.ProductPack{{PackSize: "500g", Price: decimal.NewFromInt(999)}}
	f.catalog[2] = edited

	order, err := f.repo.FindByID(context.Background(), session.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "Product B", order.Items[0].Name)
	assert.True(t, order.Items[0].Price.Equal(decimal.NewFromInt(400)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(400)))
}

func TestCreateOrder_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		input CreateOrderInput
	}{
		{"missing address", func() CreateOrderInput {
			in := checkoutInput(OrderItemInput{ProductID: 1, PackSize: "250g", Quantity: 1})
			in.Address = "  "
			return in
		}()},
		{"missing phone", func() CreateOrderInput {
			in := checkoutInput(OrderItemInput{ProductID: 1, PackSize: "250g", Quantity: 1})
			in.PhoneNumber = ""
			return in
		}()},
		{"no items", checkoutInput()},
		{"zero quantity", checkoutInput(OrderItemInput{ProductID: 1, PackSize: "250g", Quantity: 0})},
		{"unknown product", checkoutInput(
			OrderItemInput{ProductID: 1, PackSize: "250g", Quantity: 1},
			OrderItemInput{ProductID: 404, PackSize: "250g", Quantity: 1},
		)},
		{"unknown pack", checkoutInput(OrderItemInput{ProductID: 2, PackSize: "250g", Quantity: 1})},
		{"quantity over line limit", checkoutInput(OrderItemInput{ProductID: 1, PackSize: "250g", Quantity: 922337203685478})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.svc.CreateOrder(context.Background(), tc.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, f.gateway.requests, "gateway must not be called")
			assert.Empty(t, f.repo.orders)
		})
	}
}

func TestCreateOrder_TotalOverColumnLimit(t *testing.T) {
	f := newFixture()
	f.catalog[4] = domain.Product{ID: 4, Name: "Estate Saffron", Packs: []domain.ProductPack{
		{PackSize: "1kg", Price: decimal.RequireFromString("9999999999.99")},
	}}

	_, err := f.svc.CreateOrder(context.Background(), checkoutInput(
		OrderItemInput{ProductID: 4, PackSize: "1kg", Quantity: 2},
	))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.gateway.requests, "gateway must not be called")
	assert.Empty(t, f.repo.orders)
}

func TestCreateOrder_LargestOrderKeepsAmountInSync(t *testing.T) {
	f := newFixture()

	session, err := f.svc.CreateOrder(context.Background(), checkoutInput(
		OrderItemInput{ProductID: 1, PackSize: "250g", Quantity: domain.MaxLineQuantity},
		OrderItemInput{ProductID: 3, PackSize: "1g", Quantity: domain.MaxLineQuantity},
	))
	require.NoError(t, err)

	assert.Equal(t, "449990", session.TotalAmount.String())
	require.Len(t, f.gateway.requests, 1)
	assert.Equal(t, int64(44999000), f.gateway.requests[0].Amount)
	assert.Equal(t, session.TotalAmount.Shift(2).IntPart(), f.gateway.requests[0].Amount)
}

func TestCreateOrder_GatewayFailure(t *testing.T) {
	f := newFixture()
	f.gateway.fail = errors.New("connection refused")

	_, err := f.svc.CreateOrder(context.Background(), checkoutInput(
		OrderItemInput{ProductID: 1, PackSize: "250g", Quantity: 1},
	))
	assert.ErrorIs(t, err, domain.ErrGatewayFailure)
	assert.Empty(t, f.repo.orders)
}

func createPendingOrder(t *testing.T, f *fixture) domain.CheckoutSession {
	t.Helper()
	session, err := f.svc.CreateOrder(context.Background(), checkoutInput(
		OrderItemInput{ProductID: 1, PackSize: "250g", Quantity: 2},
	))
	require.NoError(t, err)
	return session
}

func TestVerifyPayment(t *testing.T) {
	f := newFixture()
	session := createPendingOrder(t, f)

	input := VerifyPaymentInput{
		RazorpayOrderID: session.RazorpayOrderID,
		PaymentID:       "pay_1",
		Signature:       f.gateway.Signature(session.RazorpayOrderID, "pay_1"),
		CartID:          "cart-1",
	}

	order, err := f.svc.VerifyPayment(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, "pay_1", order.RazorpayPaymentID)
	assert.Equal(t, []string{"cart-1"}, f.carts.cleared)

	stored, err := f.repo.FindByID(context.Background(), session.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, input.Signature, stored.RazorpaySignature)
}

func TestVerifyPayment_Idempotent(t *testing.T) {
	f := newFixture()
	session := createPendingOrder(t, f)

	input := VerifyPaymentInput{
		RazorpayOrderID: session.RazorpayOrderID,
		PaymentID:       "pay_1",
		Signature:       f.gateway.Signature(session.RazorpayOrderID, "pay_1"),
	}

	first, err := f.svc.VerifyPayment(context.Background(), input)
	require.NoError(t, err)
	afterFirst, _ := f.repo.FindByID(context.Background(), session.OrderID)

	second, err := f.svc.VerifyPayment(context.Background(), input)
	require.NoError(t, err)
	afterSecond, _ := f.repo.FindByID(context.Background(), session.OrderID)

	assert.Equal(t, first.PaymentStatus, second.PaymentStatus)
	assert.Equal(t, first.RazorpayPaymentID, second.RazorpayPaymentID)
	assert.Equal(t, afterFirst, afterSecond)
}

func TestVerifyPayment_TamperedSignature(t *testing.T) {
	f := newFixture()
	session := createPendingOrder(t, f)

	cases := []VerifyPaymentInput{
		{RazorpayOrderID: session.RazorpayOrderID, PaymentID: "pay_1", Signature: "deadbeef"},
		{RazorpayOrderID: session.RazorpayOrderID, PaymentID: "pay_2", Signature: f.gateway.Signature(session.RazorpayOrderID, "pay_1")},
		{RazorpayOrderID: session.RazorpayOrderID, PaymentID: "pay_1", Signature: f.gateway.Signature("order_other", "pay_1")},
	}

	for _, input := range cases {
		_, err := f.svc.VerifyPayment(context.Background(), input)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	}

	stored, err := f.repo.FindByID(context.Background(), session.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusUnpaid, stored.PaymentStatus)
	assert.Empty(t, stored.RazorpayPaymentID)
	assert.Zero(t, f.repo.writes)
}

func TestVerifyPayment_UnknownOrder(t *testing.T) {
	f := newFixture()

	_, err := f.svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		RazorpayOrderID: "order_missing",
		PaymentID:       "pay_1",
		Signature:       f.gateway.Signature("order_missing", "pay_1"),
	})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestVerifyPayment_SecondPaymentConflicts(t *testing.T) {
	f := newFixture()
	session := createPendingOrder(t, f)
	rzp := session.RazorpayOrderID

	_, err := f.svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		RazorpayOrderID: rzp, PaymentID: "pay_1", Signature: f.gateway.Signature(rzp, "pay_1"),
	})
	require.NoError(t, err)

	_, err = f.svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		RazorpayOrderID: rzp, PaymentID: "pay_2", Signature: f.gateway.Signature(rzp, "pay_2"),
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)

	stored, _ := f.repo.FindByID(context.Background(), session.OrderID)
	assert.Equal(t, "pay_1", stored.RazorpayPaymentID)
}

func TestMarkPaymentFailed(t *testing.T) {
	f := newFixture()
	session := createPendingOrder(t, f)
	owner := domain.Actor{UserID: 7, Role: domain.RoleCustomer}

	_, err := f.svc.MarkPaymentFailed(context.Background(), domain.Actor{UserID: 8}, session.RazorpayOrderID, "declined")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	order, err := f.svc.MarkPaymentFailed(context.Background(), owner, session.RazorpayOrderID, "card declined")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, order.PaymentStatus)
	assert.Equal(t, "card declined", order.FailureReason)

	// a later successful attempt on the same gateway order still settles it
	rzp := session.RazorpayOrderID
	paid, err := f.svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		RazorpayOrderID: rzp, PaymentID: "pay_9", Signature: f.gateway.Signature(rzp, "pay_9"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)
	assert.Empty(t, paid.FailureReason)

	_, err = f.svc.MarkPaymentFailed(context.Background(), owner, rzp, "late failure")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	session := createPendingOrder(t, f)

	order, err := f.svc.UpdateStatus(context.Background(), session.OrderID, domain.OrderStatusProcessed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessed, order.Status)

	order, err = f.svc.UpdateStatus(context.Background(), session.OrderID, domain.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	_, err = f.svc.UpdateStatus(context.Background(), session.OrderID, "shipped")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.UpdateStatus(context.Background(), 999, domain.OrderStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestGetOrders(t *testing.T) {
	f := newFixture()
	session := createPendingOrder(t, f)

	other := checkoutInput(OrderItemInput{ProductID: 2, PackSize: "500g", Quantity: 1})
	other.UserID = 8
	_, err := f.svc.CreateOrder(context.Background(), other)
	require.NoError(t, err)

	mine, err := f.svc.GetOrdersByUser(context.Background(), 7, domain.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, session.OrderID, mine[0].ID)

	all, err := f.svc.GetAllOrders(context.Background(), domain.OrderFilter{Status: domain.OrderStatusPending})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.GetAllOrders(context.Background(), domain.OrderFilter{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.GetOrder(context.Background(), domain.Actor{UserID: 8}, session.OrderID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := f.svc.GetOrder(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleAdmin}, session.OrderID)
	require.NoError(t, err)
	assert.Equal(t, session.OrderID, got.ID)
}
