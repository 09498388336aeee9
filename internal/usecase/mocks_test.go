package usecase_test

import (
	"context"
	"strings"
	"testing"

	"heelwa/internal/domain/model"
	repo "heelwa/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.Repos)
}

type TxReposMock struct {
	carts     repo.CartRepository
	cartItems repo.CartItemRepository
	variants  repo.VariantRepository
	invLog    repo.InventoryLogRepository
}

func (r *TxReposMock) Carts() repo.CartRepository                { return r.carts }
func (r *TxReposMock) CartItems() repo.CartItemRepository        { return r.cartItems }
func (r *TxReposMock) Variants() repo.VariantRepository          { return r.variants }
func (r *TxReposMock) InventoryLog() repo.InventoryLogRepository { return r.invLog }

// =====================
// Repository mocks
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) LockByID(ctx context.Context, cartID int64) (model.Cart, error) {
	args := m.Called(ctx, cartID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) ListKeptByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) UpsertActiveByCartAndVariant(ctx context.Context, cartID int64, variantID int64, addQty int64) error {
	args := m.Called(ctx, cartID, variantID, addQty)
	return args.Error(0)
}

func (m *CartItemRepoMock) CreateKept(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	args := m.Called(ctx, item)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) CountKeptByCartID(ctx context.Context, cartID int64) (int64, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CartItemRepoMock) SetKept(ctx context.Context, cartItemID int64, kept bool) (bool, error) {
	args := m.Called(ctx, cartItemID, kept)
	return args.Bool(0), args.Error(1)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteActiveByID(ctx context.Context, cartItemID int64) (bool, error) {
	args := m.Called(ctx, cartItemID)
	return args.Bool(0), args.Error(1)
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *CartItemRepoMock) KeptCountsByUser(ctx context.Context) (map[int64]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[int64]int64)
	return counts, args.Error(1)
}

type VariantRepoMock struct{ mock.Mock }

func (m *VariantRepoMock) FindByID(ctx context.Context, variantID int64) (model.Variant, error) {
	args := m.Called(ctx, variantID)
	v, _ := args.Get(0).(model.Variant)
	return v, args.Error(1)
}

func (m *VariantRepoMock) SearchByProductName(ctx context.Context, q string, limit int) ([]repo.VariantWithProduct, error) {
	args := m.Called(ctx, q, limit)
	rows, _ := args.Get(0).([]repo.VariantWithProduct)
	return rows, args.Error(1)
}

func (m *VariantRepoMock) ListByProductID(ctx context.Context, productID int64) ([]model.Variant, error) {
	args := m.Called(ctx, productID)
	rows, _ := args.Get(0).([]model.Variant)
	return rows, args.Error(1)
}

func (m *VariantRepoMock) DecreaseStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error) {
	args := m.Called(ctx, variantID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *VariantRepoMock) IncreaseStock(ctx context.Context, variantID int64, qty int64) error {
	args := m.Called(ctx, variantID, qty)
	return args.Error(0)
}

type InventoryLogRepoMock struct{ mock.Mock }

func (m *InventoryLogRepoMock) Create(ctx context.Context, entry model.InventoryLog) (model.InventoryLog, error) {
	args := m.Called(ctx, entry)
	e, _ := args.Get(0).(model.InventoryLog)
	return e, args.Error(1)
}

func (m *InventoryLogRepoMock) List(ctx context.Context, filter repo.InventoryLogFilter) ([]model.InventoryLog, error) {
	args := m.Called(ctx, filter)
	rows, _ := args.Get(0).([]model.InventoryLog)
	return rows, args.Error(1)
}

func (m *InventoryLogRepoMock) SumStockAffecting(ctx context.Context, variantID int64) (int64, error) {
	args := m.Called(ctx, variantID)
	return args.Get(0).(int64), args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) ListCustomers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) ListActive(ctx context.Context, q string) ([]model.Product, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]model.Product)
	return rows, args.Error(1)
}

// =====================
// Notifier spy（失敗しない前提なので呼び出し回数だけ見る）
// =====================

type NotifierSpy struct {
	StockCalls []int64
	CartCalls  []int64
}

func (n *NotifierSpy) StockChanged(ctx context.Context, variantID int64) {
	n.StockCalls = append(n.StockCalls, variantID)
}

func (n *NotifierSpy) CartChanged(ctx context.Context, userID int64) {
	n.CartCalls = append(n.CartCalls, userID)
}

// =====================
// Helper: error contains
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
