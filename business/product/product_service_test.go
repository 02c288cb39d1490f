//go:build !integration

package product

import (
	"context"
	"strings"
	"testing"

	"spiceMarket/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	products map[uint64]domain.Product
	nextID   uint64
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uint64]domain.Product)}
}

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.nextID++
	p.ID = r.nextID
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uint64) (domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []uint64) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindAll(_ context.Context, query string) ([]domain.Product, error) {
	var out []domain.Product
	for id := uint64(1); id <= r.nextID; id++ {
		p, ok := r.products[id]
		if !ok {
			continue
		}
		if query == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *domain.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := r.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func turmeric() *domain.Product {
	return &domain.Product{
		Name:        "Lakadong Turmeric",
		Description: "High curcumin turmeric powder",
		Stock:       40,
		Rating:      4.5,
		Packs: []domain.ProductPack{
			{PackSize: "250g", Price: decimal.NewFromInt(200)},
			{PackSize: "500g", Price: decimal.NewFromInt(380)},
		},
	}
}

func TestCreateProduct(t *testing.T) {
	svc := NewProductService(newFakeProductRepo())

	p, err := svc.CreateProduct(context.Background(), turmeric())
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	got, err := svc.GetProductByID(context.Background(), p.ID)
	require.NoError(t, err)

	price, ok := got.PriceFor("500g")
	assert.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(380)))
}

func TestCreateProduct_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *domain.Product)
	}{
		{"empty name", func(p *domain.Product) { p.Name = "  " }},
		{"no packs", func(p *domain.Product) { p.Packs = nil }},
		{"blank pack size", func(p *domain.Product) { p.Packs[0].PackSize = "" }},
		{"duplicate pack", func(p *domain.Product) { p.Packs[1].PackSize = "250g" }},
		{"zero price", func(p *domain.Product) { p.Packs[0].Price = decimal.Zero }},
		{"price over column limit", func(p *domain.Product) { p.Packs[0].Price = domain.MaxAmount.Add(decimal.NewFromInt(1)) }},
		{"negative stock", func(p *domain.Product) { p.Stock = -1 }},
		{"rating too high", func(p *domain.Product) { p.Rating = 5.5 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewProductService(newFakeProductRepo())
			p := turmeric()
			tc.mutate(p)

			_, err := svc.CreateProduct(context.Background(), p)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	svc := NewProductService(newFakeProductRepo())

	p, err := svc.CreateProduct(context.Background(), turmeric())
	require.NoError(t, err)

	p.Packs = []domain.ProductPack{{PackSize: "1kg", Price: decimal.NewFromInt(700)}}
	updated, err := svc.UpdateProduct(context.Background(), p)
	require.NoError(t, err)

	_, ok := updated.PriceFor("250g")
	assert.False(t, ok)
	price, ok := updated.PriceFor("1kg")
	assert.True(t, ok)
	assert.Equal(t, "700", price.String())

	_, err = svc.UpdateProduct(context.Background(), &domain.Product{ID: 99, Name: "x", Packs: p.Packs})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetAllAndDelete(t *testing.T) {
	svc := NewProductService(newFakeProductRepo())

	_, err := svc.CreateProduct(context.Background(), turmeric())
	require.NoError(t, err)
	chilli := turmeric()
	chilli.Name = "Kashmiri Chilli"
	c, err := svc.CreateProduct(context.Background(), chilli)
	require.NoError(t, err)

	all, err := svc.GetAllProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := svc.GetAllProducts(context.Background(), "chilli")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, c.ID, found[0].ID)

	require.NoError(t, svc.DeleteProduct(context.Background(), c.ID))
	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), c.ID), domain.ErrProductNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), 0), domain.ErrValidation)

	_, err = svc.GetProductByID(context.Background(), c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
