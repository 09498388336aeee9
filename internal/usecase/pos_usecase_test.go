package usecase_test

import (
	"context"
	"testing"

	"heelwa/internal/domain/model"
	repo "heelwa/internal/repository"
	"heelwa/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newPosFixture() (*usecase.PosUsecase, *UserRepoMock, *CartRepoMock, *CartItemRepoMock, *VariantRepoMock, *ProductRepoMock, *NotifierSpy) {
	users := new(UserRepoMock)
	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	variants := new(VariantRepoMock)
	products := new(ProductRepoMock)
	notifier := &NotifierSpy{}

	tx := &TxManagerMock{Repos: &TxReposMock{
		carts:     carts,
		cartItems: items,
		variants:  variants,
		invLog:    new(InventoryLogRepoMock),
	}}

	uc := usecase.NewPosUsecase(tx, users, carts, items, variants, products, notifier)
	return uc, users, carts, items, variants, products, notifier
}

func TestPosUsecase_ListCustomers_SortsByKeepCount(t *testing.T) {
	uc, users, _, items, _, _, _ := newPosFixture()

	//username昇順で来る
	users.On("ListCustomers", mock.Anything).Return([]model.User{
		{ID: 1, Username: "ani"},
		{ID: 2, Username: "budi"},
		{ID: 3, Username: "citra"},
	}, nil)
	items.On("KeptCountsByUser", mock.Anything).Return(map[int64]int64{2: 3, 3: 1}, nil)

	out, err := uc.ListCustomers(context.Background(), 5)

	assert.NoError(t, err)
	assert.Len(t, out, 3)
	//Keepの多い順、同数はusername順のまま
	assert.Equal(t, int64(2), out[0].ID)
	assert.Equal(t, int64(3), out[1].ID)
	assert.Equal(t, int64(1), out[2].ID)
	assert.Equal(t, int64(3), out[0].KeepCount)
}

func TestPosUsecase_CustomerKeeps_EmptyWithoutCart(t *testing.T) {
	uc, _, carts, _, _, _, _ := newPosFixture()

	carts.On("FindByUserID", mock.Anything, int64(42)).Return(nil, repo.ErrNotFound)

	out, err := uc.CustomerKeeps(context.Background(), 5, 42)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.CustomerID)
	assert.Empty(t, out.Items)
}

func TestPosUsecase_AddToKeep_CapExceeded(t *testing.T) {
	uc, users, carts, items, variants, _, _ := newPosFixture()

	users.On("FindByID", mock.Anything, int64(42)).Return(&model.User{ID: 42}, nil)
	carts.On("GetOrCreateByUserID", mock.Anything, int64(42)).Return(model.Cart{ID: 7, UserID: 42}, nil)
	carts.On("LockByID", mock.Anything, int64(7)).Return(model.Cart{ID: 7, UserID: 42}, nil)
	items.On("CountKeptByCartID", mock.Anything, int64(7)).Return(int64(3), nil)

	err := uc.AddToKeep(context.Background(), 5, usecase.AddToKeepInput{CustomerID: 42, VariantID: 3, Quantity: 1})

	assert.ErrorIs(t, err, usecase.ErrCapExceeded)
	variants.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
}

func TestPosUsecase_FinalizeSale_Succeeds(t *testing.T) {
	uc, _, carts, items, variants, products, notifier := newPosFixture()

	invLog := new(InventoryLogRepoMock)
	tx := &TxManagerMock{Repos: &TxReposMock{
		carts:     carts,
		cartItems: items,
		variants:  variants,
		invLog:    invLog,
	}}
	users := new(UserRepoMock)
	uc = usecase.NewPosUsecase(tx, users, carts, items, variants, products, notifier)

	carts.On("FindByUserID", mock.Anything, int64(42)).Return(model.Cart{ID: 7, UserID: 42}, nil)
	carts.On("LockByID", mock.Anything, int64(7)).Return(model.Cart{ID: 7, UserID: 42}, nil)
	items.On("FindByID", mock.Anything, int64(10)).Return(model.CartItem{ID: 10, CartID: 7, VariantID: 3, Quantity: 1, Kept: true}, nil)
	items.On("FindByID", mock.Anything, int64(11)).Return(model.CartItem{ID: 11, CartID: 7, VariantID: 4, Quantity: 2, Kept: true}, nil)
	variants.On("FindByID", mock.Anything, int64(3)).Return(model.Variant{ID: 3, ProductID: 1, SKU: "HW-3", Price: 150000}, nil)
	variants.On("FindByID", mock.Anything, int64(4)).Return(model.Variant{ID: 4, ProductID: 1, SKU: "HW-4", Price: 200000}, nil)
	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "Heels Classic", IsActive: true}, nil)

	//全行が同じtransaction_idを共有しているか捕まえる
	var txIDs []string
	invLog.On("Create", mock.Anything, mock.MatchedBy(func(e model.InventoryLog) bool {
		return e.ChangeType == model.ChangeTypeSale &&
			e.TransactionID != nil &&
			e.PaymentMethod != nil &&
			*e.PaymentMethod == model.PaymentMethodQRIS &&
			e.QuantityChange < 0
	})).Run(func(args mock.Arguments) {
		e := args.Get(1).(model.InventoryLog)
		txIDs = append(txIDs, *e.TransactionID)
	}).Return(model.InventoryLog{ID: 100}, nil)
	items.On("DeleteByID", mock.Anything, int64(10)).Return(nil)
	items.On("DeleteByID", mock.Anything, int64(11)).Return(nil)

	out, err := uc.FinalizeSale(context.Background(), 5, usecase.FinalizeSaleInput{
		CustomerID:    42,
		CartItemIDs:   []int64{10, 11},
		PaymentMethod: "QRIS",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, out.TransactionID)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, int64(550000), out.Total)
	assert.Equal(t, "QRIS", out.PaymentMethod)

	assert.Len(t, txIDs, 2)
	assert.Equal(t, txIDs[0], txIDs[1])
	assert.Equal(t, out.TransactionID, txIDs[0])

	assert.Equal(t, []int64{42}, notifier.CartCalls)
	items.AssertCalled(t, "DeleteByID", mock.Anything, int64(10))
	items.AssertCalled(t, "DeleteByID", mock.Anything, int64(11))
}

func TestPosUsecase_FinalizeSale_RejectsUnkeptItem(t *testing.T) {
	uc, _, carts, items, variants, products, notifier := newPosFixture()

	invLog := new(InventoryLogRepoMock)
	tx := &TxManagerMock{Repos: &TxReposMock{
		carts:     carts,
		cartItems: items,
		variants:  variants,
		invLog:    invLog,
	}}
	uc = usecase.NewPosUsecase(tx, new(UserRepoMock), carts, items, variants, products, notifier)

	carts.On("FindByUserID", mock.Anything, int64(42)).Return(model.Cart{ID: 7, UserID: 42}, nil)
	carts.On("LockByID", mock.Anything, int64(7)).Return(model.Cart{ID: 7, UserID: 42}, nil)
	items.On("FindByID", mock.Anything, int64(10)).Return(model.CartItem{ID: 10, CartID: 7, VariantID: 3, Quantity: 1, Kept: true}, nil)
	items.On("FindByID", mock.Anything, int64(11)).Return(model.CartItem{ID: 11, CartID: 7, VariantID: 4, Quantity: 1, Kept: false}, nil)

	_, err := uc.FinalizeSale(context.Background(), 5, usecase.FinalizeSaleInput{
		CustomerID:    42,
		CartItemIDs:   []int64{10, 11},
		PaymentMethod: "Cash",
	})

	assert.ErrorIs(t, err, usecase.ErrInvalidSelection)
	//全体拒否。台帳にも明細にも触らない
	invLog.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	items.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestPosUsecase_FinalizeSale_InvalidPayment(t *testing.T) {
	uc, _, carts, _, _, _, _ := newPosFixture()

	_, err := uc.FinalizeSale(context.Background(), 5, usecase.FinalizeSaleInput{
		CustomerID:    42,
		CartItemIDs:   []int64{10},
		PaymentMethod: "Crypto",
	})

	assert.ErrorIs(t, err, usecase.ErrInvalidPayment)
	carts.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
}

func TestPosUsecase_FinalizeSale_DuplicateItemIDs(t *testing.T) {
	uc, _, carts, _, _, _, _ := newPosFixture()

	_, err := uc.FinalizeSale(context.Background(), 5, usecase.FinalizeSaleInput{
		CustomerID:    42,
		CartItemIDs:   []int64{10, 10},
		PaymentMethod: "Cash",
	})

	assert.ErrorIs(t, err, usecase.ErrInvalidSelection)
	carts.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
}
