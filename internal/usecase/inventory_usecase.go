package usecase

import (
	"context"
	"sort"

	"heelwa/internal/domain/model"
	"heelwa/internal/notify"
	repo "heelwa/internal/repository"
)

// InventoryUsecase は管理側の在庫操作（入荷・補正・在庫一覧）。
// すべての在庫変動は台帳の行とセットで適用する。
type InventoryUsecase struct {
	tx          repo.TransactionManager
	productRepo repo.ProductRepository
	variantRepo repo.VariantRepository
	notifier    notify.Notifier
}

func NewInventoryUsecase(
	tx repo.TransactionManager,
	productRepo repo.ProductRepository,
	variantRepo repo.VariantRepository,
	notifier notify.Notifier,
) *InventoryUsecase {
	return &InventoryUsecase{
		tx:          tx,
		productRepo: productRepo,
		variantRepo: variantRepo,
		notifier:    notifier,
	}
}

type StockProductResponse struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Variants []model.Variant `json:"variants"`
}

type StockOverviewInput struct {
	Q        string
	LowFirst bool
}

// StockOverview は商品ごとのバリアント在庫一覧。
// LowFirstなら在庫の少ない順に並べる。
func (u *InventoryUsecase) StockOverview(ctx context.Context, cashierID int64, in StockOverviewInput) ([]StockProductResponse, error) {
	if cashierID <= 0 {
		return nil, ErrNotAuthenticated
	}

	products, err := u.productRepo.ListActive(ctx, in.Q)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]StockProductResponse, 0, len(products))
	for _, p := range products {
		variants, err := u.variantRepo.ListByProductID(ctx, p.ID)
		if err != nil {
			return nil, ErrInternal
		}

		if in.LowFirst {
			sort.SliceStable(variants, func(i, j int) bool {
				return variants[i].StockQuantity < variants[j].StockQuantity
			})
		}

		out = append(out, StockProductResponse{
			ID:       p.ID,
			Name:     p.Name,
			Variants: variants,
		})
	}

	return out, nil
}

// Restock は入荷による在庫増。restock行を台帳に追記する。
func (u *InventoryUsecase) Restock(ctx context.Context, cashierID int64, variantID int64, qty int64) error {
	if cashierID <= 0 {
		return ErrNotAuthenticated
	}
	if variantID <= 0 || qty < 1 {
		return ErrValidation
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Variants().IncreaseStock(ctx, variantID, qty); err != nil {
			if err == repo.ErrNotFound {
				return repo.ErrNotFound
			}
			return ErrInternal
		}

		if _, err := r.InventoryLog().Create(ctx, model.InventoryLog{
			VariantID:      variantID,
			ChangeType:     model.ChangeTypeRestock,
			QuantityChange: qty,
			CashierID:      cashierID,
		}); err != nil {
			return ErrInternal
		}

		return nil
	})

	if err != nil {
		return err
	}

	u.notifier.StockChanged(ctx, variantID)
	return nil
}

// Adjust は手動補正。deltaの符号どおりに在庫を増減し、
// adjustment行を台帳に追記する。台帳は編集しない決まりなので、
// 過去の間違いも新しい補正行で打ち消す。
func (u *InventoryUsecase) Adjust(ctx context.Context, cashierID int64, variantID int64, delta int64) error {
	if cashierID <= 0 {
		return ErrNotAuthenticated
	}
	if variantID <= 0 || delta == 0 {
		return ErrValidation
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if delta > 0 {
			if err := r.Variants().IncreaseStock(ctx, variantID, delta); err != nil {
				if err == repo.ErrNotFound {
					return repo.ErrNotFound
				}
				return ErrInternal
			}
		} else {
			//マイナス補正でも在庫は0未満にしない
			ok, err := r.Variants().DecreaseStockIfEnough(ctx, variantID, -delta)
			if err != nil {
				return ErrInternal
			}
			if !ok {
				return ErrInsufficientStock
			}
		}

		if _, err := r.InventoryLog().Create(ctx, model.InventoryLog{
			VariantID:      variantID,
			ChangeType:     model.ChangeTypeAdjustment,
			QuantityChange: delta,
			CashierID:      cashierID,
		}); err != nil {
			return ErrInternal
		}

		return nil
	})

	if err != nil {
		return err
	}

	u.notifier.StockChanged(ctx, variantID)
	return nil
}
