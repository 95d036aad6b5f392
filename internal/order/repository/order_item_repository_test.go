package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faraganiev/testjowi/internal/domain"
	"github.com/faraganiev/testjowi/internal/testutil"
)

func TestMySQLOrderItemRepository_InsertAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	orderRepo := NewMySQLOrderRepository(db)
	itemRepo := NewMySQLOrderItemRepository(db)
	ctx := context.Background()

	orderID := insertTestOrder(t, db, orderRepo, domain.StatusNew)

	notes := "без лука"
	tx, err := db.Begin()
	require.NoError(t, err)

	firstID, err := itemRepo.Insert(ctx, tx, domain.OrderItem{
		OrderID:     orderID,
		ProductName: "Пицца Маргарита",
		Quantity:    2,
		Price:       55000,
		Notes:       &notes,
	})
	require.NoError(t, err)

	secondID, err := itemRepo.Insert(ctx, tx, domain.OrderItem{
		OrderID:     orderID,
		ProductName: "Кола 0.5",
		Quantity:    1,
		Price:       11000,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	items, err := itemRepo.FindByOrderID(ctx, orderID)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, firstID, items[0].ID)
	assert.Equal(t, "Пицца Маргарита", items[0].ProductName)
	assert.Equal(t, 2, items[0].Quantity)
	require.NotNil(t, items[0].Notes)
	assert.Equal(t, "без лука", *items[0].Notes)
	assert.Equal(t, secondID, items[1].ID)
	assert.Nil(t, items[1].Notes)
}

func TestMySQLOrderItemRepository_FindByOrderID_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupTestTables(t, db)

	itemRepo := NewMySQLOrderItemRepository(db)

	items, err := itemRepo.FindByOrderID(context.Background(), 999999)

	require.NoError(t, err)
	assert.Empty(t, items)
}
