package usecase_test

import (
	"context"
	"errors"
	"testing"

	"heelwa/internal/domain/model"
	repo "heelwa/internal/repository"
	"heelwa/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newKeepFixture() (*usecase.KeepUsecase, *CartRepoMock, *CartItemRepoMock, *VariantRepoMock, *InventoryLogRepoMock, *NotifierSpy) {
	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	variants := new(VariantRepoMock)
	invLog := new(InventoryLogRepoMock)
	notifier := &NotifierSpy{}

	tx := &TxManagerMock{Repos: &TxReposMock{
		carts:     carts,
		cartItems: items,
		variants:  variants,
		invLog:    invLog,
	}}

	uc := usecase.NewKeepUsecase(tx, items, notifier)
	return uc, carts, items, variants, invLog, notifier
}

func TestKeepUsecase_Promote_Succeeds(t *testing.T) {
	uc, carts, items, variants, invLog, notifier := newKeepFixture()

	item := model.CartItem{ID: 10, CartID: 7, VariantID: 3, Quantity: 2, Kept: false}
	cart := model.Cart{ID: 7, UserID: 42}

	items.On("FindByID", mock.Anything, int64(10)).Return(item, nil)
	carts.On("LockByID", mock.Anything, int64(7)).Return(cart, nil)
	items.On("CountKeptByCartID", mock.Anything, int64(7)).Return(int64(1), nil)
	variants.On("DecreaseStockIfEnough", mock.Anything, int64(3), int64(2)).Return(true, nil)
	items.On("SetKept", mock.Anything, int64(10), true).Return(true, nil)
	invLog.On("Create", mock.Anything, mock.MatchedBy(func(e model.InventoryLog) bool {
		return e.VariantID == 3 &&
			e.ChangeType == model.ChangeTypeAdjustment &&
			e.QuantityChange == -2 &&
			e.CashierID == 42 &&
			e.CustomerID == 42
	})).Return(model.InventoryLog{ID: 100}, nil)

	err := uc.Promote(context.Background(), 42, 10)

	assert.NoError(t, err)
	assert.Equal(t, []int64{3}, notifier.StockCalls)
	invLog.AssertExpectations(t)
}

func TestKeepUsecase_Promote_AlreadyKept(t *testing.T) {
	uc, _, items, variants, _, _ := newKeepFixture()

	items.On("FindByID", mock.Anything, int64(10)).Return(model.CartItem{ID: 10, CartID: 7, Kept: true}, nil)

	err := uc.Promote(context.Background(), 42, 10)

	assert.ErrorIs(t, err, usecase.ErrItemLocked)
	variants.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
}

func TestKeepUsecase_Promote_CapExceeded(t *testing.T) {
	uc, carts, items, variants, _, notifier := newKeepFixture()

	items.On("FindByID", mock.Anything, int64(10)).Return(model.CartItem{ID: 10, CartID: 7, VariantID: 3, Quantity: 1}, nil)
	carts.On("LockByID", mock.Anything, int64(7)).Return(model.Cart{ID: 7, UserID: 42}, nil)
	items.On("CountKeptByCartID", mock.Anything, int64(7)).Return(int64(3), nil)

	err := uc.Promote(context.Background(), 42, 10)

	assert.ErrorIs(t, err, usecase.ErrCapExceeded)
	//上限超過では在庫に触らない
	variants.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, notifier.StockCalls)
}

func TestKeepUsecase_Promote_InsufficientStock(t *testing.T) {
	uc, carts, items, variants, invLog, _ := newKeepFixture()

	items.On("FindByID", mock.Anything, int64(10)).Return(model.CartItem{ID: 10, CartID: 7, VariantID: 3, Quantity: 5}, nil)
	carts.On("LockByID", mock.Anything, int64(7)).Return(model.Cart{ID: 7, UserID: 42}, nil)
	items.On("CountKeptByCartID", mock.Anything, int64(7)).Return(int64(0), nil)
	variants.On("DecreaseStockIfEnough", mock.Anything, int64(3), int64(5)).Return(false, nil)

	err := uc.Promote(context.Background(), 42, 10)

	assert.ErrorIs(t, err, usecase.ErrInsufficientStock)
	invLog.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestKeepUsecase_Promote_NotAuthenticated(t *testing.T) {
	uc, _, _, _, _, _ := newKeepFixture()

	err := uc.Promote(context.Background(), 0, 10)

	assert.ErrorIs(t, err, usecase.ErrNotAuthenticated)
}

func TestKeepUsecase_PromoteOwn_NotOwned(t *testing.T) {
	uc, _, items, _, _, _ := newKeepFixture()

	items.On("IsOwnedByUser", mock.Anything, int64(10), int64(42)).Return(false, nil)

	err := uc.PromoteOwn(context.Background(), 42, 10)

	assert.ErrorIs(t, err, repo.ErrNotFound)
	items.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestKeepUsecase_Release_Succeeds(t *testing.T) {
	uc, carts, items, variants, invLog, notifier := newKeepFixture()

	items.On("FindByID", mock.Anything, int64(10)).Return(model.CartItem{ID: 10, CartID: 7, VariantID: 3, Quantity: 2, Kept: true}, nil)
	carts.On("LockByID", mock.Anything, int64(7)).Return(model.Cart{ID: 7, UserID: 42}, nil)
	items.On("SetKept", mock.Anything, int64(10), false).Return(true, nil)
	variants.On("IncreaseStock", mock.Anything, int64(3), int64(2)).Return(nil)
	invLog.On("Create", mock.Anything, mock.MatchedBy(func(e model.InventoryLog) bool {
		return e.ChangeType == model.ChangeTypeReturn && e.QuantityChange == 2
	})).Return(model.InventoryLog{ID: 101}, nil)

	err := uc.Release(context.Background(), 5, 10)

	assert.NoError(t, err)
	assert.Equal(t, []int64{3}, notifier.StockCalls)
	invLog.AssertExpectations(t)
}

func TestKeepUsecase_Release_NotKept(t *testing.T) {
	uc, _, items, variants, _, _ := newKeepFixture()

	items.On("FindByID", mock.Anything, int64(10)).Return(model.CartItem{ID: 10, CartID: 7, Kept: false}, nil)

	err := uc.Release(context.Background(), 5, 10)

	assert.ErrorIs(t, err, usecase.ErrNotKept)
	variants.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestKeepUsecase_Release_StockRestoreFails(t *testing.T) {
	uc, carts, items, variants, _, _ := newKeepFixture()

	items.On("FindByID", mock.Anything, int64(10)).Return(model.CartItem{ID: 10, CartID: 7, VariantID: 3, Quantity: 1, Kept: true}, nil)
	carts.On("LockByID", mock.Anything, int64(7)).Return(model.Cart{ID: 7, UserID: 42}, nil)
	items.On("SetKept", mock.Anything, int64(10), false).Return(true, nil)
	variants.On("IncreaseStock", mock.Anything, int64(3), int64(1)).Return(errors.New("db down"))

	err := uc.Release(context.Background(), 5, 10)

	ie, ok := usecase.AsInconsistentState(err)
	assert.True(t, ok)
	assert.Equal(t, int64(10), ie.CartItemID)
	assert.Equal(t, int64(3), ie.VariantID)
}

func TestKeepUsecase_ReleaseMany_PartialSuccess(t *testing.T) {
	uc, carts, items, variants, invLog, _ := newKeepFixture()

	//10はKept、11はActiveで失敗する
	items.On("FindByID", mock.Anything, int64(10)).Return(model.CartItem{ID: 10, CartID: 7, VariantID: 3, Quantity: 1, Kept: true}, nil)
	items.On("FindByID", mock.Anything, int64(11)).Return(model.CartItem{ID: 11, CartID: 7, VariantID: 4, Quantity: 1, Kept: false}, nil)
	carts.On("LockByID", mock.Anything, int64(7)).Return(model.Cart{ID: 7, UserID: 42}, nil)
	items.On("SetKept", mock.Anything, int64(10), false).Return(true, nil)
	variants.On("IncreaseStock", mock.Anything, int64(3), int64(1)).Return(nil)
	invLog.On("Create", mock.Anything, mock.Anything).Return(model.InventoryLog{ID: 102}, nil)

	results, err := uc.ReleaseMany(context.Background(), 5, []int64{10, 11})

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.True(t, results[0].Released)
	assert.False(t, results[1].Released)
	assertErrContains(t, errors.New(results[1].Error), "not kept")
}
