package usecase_test

import (
	"context"
	"testing"
	"time"

	"heelwa/internal/domain/model"
	repo "heelwa/internal/repository"
	"heelwa/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newLedgerFixture() (*usecase.LedgerUsecase, *InventoryLogRepoMock, *VariantRepoMock, *ProductRepoMock, *UserRepoMock) {
	invLog := new(InventoryLogRepoMock)
	variants := new(VariantRepoMock)
	products := new(ProductRepoMock)
	users := new(UserRepoMock)

	uc := usecase.NewLedgerUsecase(invLog, variants, products, users)
	return uc, invLog, variants, products, users
}

func TestLedgerUsecase_List_GroupsByTransaction(t *testing.T) {
	uc, invLog, variants, products, users := newLedgerFixture()

	txID := "3f1c2a6e-9a1b-4c7d-8e2f-0123456789ab"
	qris := model.PaymentMethodQRIS
	now := time.Now()

	//同じ販売の2行 + 単独の入荷1行
	invLog.On("List", mock.Anything, mock.Anything).Return([]model.InventoryLog{
		{ID: 3, TransactionID: &txID, VariantID: 3, ChangeType: model.ChangeTypeSale, QuantityChange: -1, CashierID: 5, CustomerID: 42, PaymentMethod: &qris, CreatedAt: now},
		{ID: 2, TransactionID: &txID, VariantID: 4, ChangeType: model.ChangeTypeSale, QuantityChange: -2, CashierID: 5, CustomerID: 42, PaymentMethod: &qris, CreatedAt: now},
		{ID: 1, VariantID: 3, ChangeType: model.ChangeTypeRestock, QuantityChange: 10, CashierID: 5, CreatedAt: now.Add(-time.Hour)},
	}, nil)

	variants.On("FindByID", mock.Anything, int64(3)).Return(model.Variant{ID: 3, ProductID: 1, SKU: "HW-3", Price: 150000}, nil)
	variants.On("FindByID", mock.Anything, int64(4)).Return(model.Variant{ID: 4, ProductID: 1, SKU: "HW-4", Price: 200000}, nil)
	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "Heels Classic"}, nil)
	users.On("FindByID", mock.Anything, int64(5)).Return(&model.User{ID: 5, Username: "kasir"}, nil)
	users.On("FindByID", mock.Anything, int64(42)).Return(&model.User{ID: 42, Username: "budi"}, nil)

	out, err := uc.List(context.Background(), 5, usecase.LedgerListInput{})

	assert.NoError(t, err)
	assert.Len(t, out.Groups, 2)

	sale := out.Groups[0]
	assert.Equal(t, txID, sale.Key)
	assert.Len(t, sale.Items, 2)
	assert.Equal(t, int64(3), sale.TotalQuantity)
	assert.Equal(t, int64(550000), sale.TotalValue)
	assert.Equal(t, "QRIS", sale.PaymentMethod)
	assert.Equal(t, "kasir", sale.Cashier)
	assert.Equal(t, "budi", sale.Customer)

	restock := out.Groups[1]
	assert.Equal(t, "1", restock.Key)
	assert.Nil(t, restock.TransactionID)
	assert.Len(t, restock.Items, 1)
	assert.Equal(t, "-", restock.Customer)

	//売上集計はsale行だけ
	assert.Equal(t, int64(3), out.TotalItemsSold)
	assert.Equal(t, int64(550000), out.TotalRevenue)
}

func TestLedgerUsecase_List_InvalidChangeType(t *testing.T) {
	uc, invLog, _, _, _ := newLedgerFixture()

	_, err := uc.List(context.Background(), 5, usecase.LedgerListInput{ChangeType: "refund"})

	assert.ErrorIs(t, err, usecase.ErrValidation)
	invLog.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestLedgerUsecase_List_PassesChangeTypeFilter(t *testing.T) {
	uc, invLog, _, _, _ := newLedgerFixture()

	invLog.On("List", mock.Anything, mock.MatchedBy(func(f repo.InventoryLogFilter) bool {
		return f.ChangeType != nil && *f.ChangeType == model.ChangeTypeSale
	})).Return([]model.InventoryLog{}, nil)

	out, err := uc.List(context.Background(), 5, usecase.LedgerListInput{ChangeType: "sale"})

	assert.NoError(t, err)
	assert.Empty(t, out.Groups)
	invLog.AssertExpectations(t)
}

func TestLedgerUsecase_CheckConsistency(t *testing.T) {
	uc, invLog, variants, _, _ := newLedgerFixture()

	variants.On("FindByID", mock.Anything, int64(3)).Return(model.Variant{ID: 3, StockQuantity: 8}, nil)
	//saleを除いた合算（引き当て-2のまま）
	invLog.On("SumStockAffecting", mock.Anything, int64(3)).Return(int64(-2), nil)

	out, err := uc.CheckConsistency(context.Background(), 5, 3)

	assert.NoError(t, err)
	assert.Equal(t, int64(8), out.StockQuantity)
	assert.Equal(t, int64(-2), out.LedgerDelta)
}

func TestLedgerUsecase_CheckConsistency_UnknownVariant(t *testing.T) {
	uc, _, variants, _, _ := newLedgerFixture()

	variants.On("FindByID", mock.Anything, int64(99)).Return(nil, repo.ErrNotFound)

	_, err := uc.CheckConsistency(context.Background(), 5, 99)

	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestLedgerUsecase_List_NotAuthenticated(t *testing.T) {
	uc, _, _, _, _ := newLedgerFixture()

	_, err := uc.List(context.Background(), 0, usecase.LedgerListInput{})

	assert.ErrorIs(t, err, usecase.ErrNotAuthenticated)
}
