package service

import (
	"context"
	"testing"

	"paypilot/internal/apierror"
	"paypilot/internal/model"
	"paypilot/internal/scope"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustStockSetsAbsoluteQuantity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct("widget", "10.00", 3)

	resp, err := f.productSvc.AdjustStock(ctx, f.storeScope(), p.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Quantity)
	assert.Equal(t, 10, f.products.quantity(p.ID))

	// The audit row carries the signed delta against the previous quantity.
	movements, err := f.movements.ListByProduct(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementRestock, movements[0].Type)
	assert.Equal(t, 7, movements[0].Quantity)
	assert.Equal(t, 3, movements[0].StockBefore)
	assert.Equal(t, 10, movements[0].StockAfter)
}

func TestAdjustStockRejectsNegativeAndForeignStore(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addProduct("widget", "10.00", 3)

	var ve *apierror.ValidationError
	_, err := f.productSvc.AdjustStock(ctx, f.storeScope(), p.ID, -1)
	assert.ErrorAs(t, err, &ve)

	_, err = f.productSvc.AdjustStock(ctx, scope.Scope{StoreID: uuid.New()}, p.ID, 5)
	assert.ErrorIs(t, err, apierror.ErrForbidden)

	_, err = f.productSvc.AdjustStock(ctx, f.storeScope(), uuid.New(), 5)
	assert.ErrorIs(t, err, apierror.ErrNotFound)

	assert.Equal(t, 3, f.products.quantity(p.ID))
}
