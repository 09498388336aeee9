package repository

import (
	"context"

	repo "heelwa/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	carts        repo.CartRepository
	cartItems    repo.CartItemRepository
	variants     repo.VariantRepository
	inventoryLog repo.InventoryLogRepository
}

func (r *txReposGorm) Carts() repo.CartRepository                { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository        { return r.cartItems }
func (r *txReposGorm) Variants() repo.VariantRepository          { return r.variants }
func (r *txReposGorm) InventoryLog() repo.InventoryLogRepository { return r.inventoryLog }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			carts:        NewCartGormRepository(tx),
			cartItems:    NewCartItemGormRepository(tx),
			variants:     NewVariantGormRepository(tx),
			inventoryLog: NewInventoryLogGormRepository(tx),
		}
		return fn(r)
	})
}
