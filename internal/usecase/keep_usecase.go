package usecase

import (
	"context"

	"heelwa/internal/domain/model"
	"heelwa/internal/notify"
	repo "heelwa/internal/repository"
)

// 1人の顧客が同時にKeepできる明細数
const KeepLimit = 3

// KeepUsecase は明細の予約（Keep）と解除を扱います。
// 状態遷移は Active → Kept → {Sold, Released} で、
// SoldはPOS確定（明細削除）、ReleasedはActiveへの復帰として表現します。
//
// 上限チェックと在庫チェックは1つのトランザクション内で、
// カート行のFOR UPDATEロックの下で行う。並行するpromote同士が
// 両方ともcount<3や在庫十分を観測して二重に通ることはない。
type KeepUsecase struct {
	tx           repo.TransactionManager
	cartItemRepo repo.CartItemRepository
	notifier     notify.Notifier
}

func NewKeepUsecase(
	tx repo.TransactionManager,
	cartItemRepo repo.CartItemRepository,
	notifier notify.Notifier,
) *KeepUsecase {
	return &KeepUsecase{
		tx:           tx,
		cartItemRepo: cartItemRepo,
		notifier:     notifier,
	}
}

// ReleaseManyの明細ごとの結果
type ReleaseResult struct {
	CartItemID int64  `json:"cart_item_id"`
	Released   bool   `json:"released"`
	Error      string `json:"error,omitempty"`
}

// Promote はActiveな明細をKeepへ昇格する。
// 成立時: kept=true、在庫をquantityぶん減算、adjustment行を台帳に追記。
// cashierIDは操作者（顧客本人ならその顧客、店員ならその店員）。
func (u *KeepUsecase) Promote(ctx context.Context, cashierID int64, cartItemID int64) error {
	if cashierID <= 0 {
		return ErrNotAuthenticated
	}
	if cartItemID <= 0 {
		return ErrValidation
	}

	var variantID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := r.CartItems().FindByID(ctx, cartItemID)
		if err == repo.ErrNotFound {
			return repo.ErrNotFound
		}
		if err != nil {
			return ErrInternal
		}
		if item.Kept {
			return ErrItemLocked
		}

		//カート行ロックで顧客単位に直列化
		cart, err := r.Carts().LockByID(ctx, item.CartID)
		if err != nil {
			return ErrInternal
		}

		//上限はロック下で数え直す（先読みの値は信用しない）
		count, err := r.CartItems().CountKeptByCartID(ctx, cart.ID)
		if err != nil {
			return ErrInternal
		}
		if count >= KeepLimit {
			return ErrCapExceeded
		}

		//在庫減算は条件付きUPDATE1本。0行ならそのまま在庫不足。
		ok, err := r.Variants().DecreaseStockIfEnough(ctx, item.VariantID, item.Quantity)
		if err != nil {
			return ErrInternal
		}
		if !ok {
			return ErrInsufficientStock
		}

		changed, err := r.CartItems().SetKept(ctx, item.ID, true)
		if err != nil {
			return ErrInternal
		}
		if !changed {
			//並行で状態が変わっていた。ロールバックで減算も戻る。
			return ErrItemLocked
		}

		if _, err := r.InventoryLog().Create(ctx, model.InventoryLog{
			VariantID:      item.VariantID,
			ChangeType:     model.ChangeTypeAdjustment,
			QuantityChange: -item.Quantity,
			CashierID:      cashierID,
			CustomerID:     cart.UserID,
		}); err != nil {
			return ErrInternal
		}

		variantID = item.VariantID
		return nil
	})

	if err != nil {
		return err
	}

	u.notifier.StockChanged(ctx, variantID)
	return nil
}

// PromoteOwn は顧客が自分の明細をKeepする入口。
// 所有チェックをしてからPromoteに流す。
func (u *KeepUsecase) PromoteOwn(ctx context.Context, userID int64, cartItemID int64) error {
	if userID <= 0 {
		return ErrNotAuthenticated
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return ErrInternal
	}
	if !owned {
		return repo.ErrNotFound
	}

	return u.Promote(ctx, userID, cartItemID)
}

// Release はKeepを解除してActiveへ戻す。
// 在庫をquantityぶん戻し、return行を台帳に追記する。
// 既にActiveな明細への二重releaseはErrNotKept（二重計上しない）。
func (u *KeepUsecase) Release(ctx context.Context, cashierID int64, cartItemID int64) error {
	if cashierID <= 0 {
		return ErrNotAuthenticated
	}
	if cartItemID <= 0 {
		return ErrValidation
	}

	var variantID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := r.CartItems().FindByID(ctx, cartItemID)
		if err == repo.ErrNotFound {
			return repo.ErrNotFound
		}
		if err != nil {
			return ErrInternal
		}
		if !item.Kept {
			return ErrNotKept
		}

		//ロック順はPromoteと同じ（カート→明細）
		cart, err := r.Carts().LockByID(ctx, item.CartID)
		if err != nil {
			return ErrInternal
		}

		changed, err := r.CartItems().SetKept(ctx, item.ID, false)
		if err != nil {
			return ErrInternal
		}
		if !changed {
			return ErrNotKept
		}

		if err := r.Variants().IncreaseStock(ctx, item.VariantID, item.Quantity); err != nil {
			return &InconsistentStateError{
				CartItemID: item.ID,
				VariantID:  item.VariantID,
				Step:       "release stock restore",
			}
		}

		if _, err := r.InventoryLog().Create(ctx, model.InventoryLog{
			VariantID:      item.VariantID,
			ChangeType:     model.ChangeTypeReturn,
			QuantityChange: item.Quantity,
			CashierID:      cashierID,
			CustomerID:     cart.UserID,
		}); err != nil {
			return ErrInternal
		}

		variantID = item.VariantID
		return nil
	})

	if err != nil {
		return err
	}

	u.notifier.StockChanged(ctx, variantID)
	return nil
}

// ReleaseMany は複数明細をまとめて解除する。
// releaseは1件ずつ独立して安全なので、こちらは部分成功を許し、
// 明細ごとの結果を返す（BulkRemoveの全拒否とは逆）。
func (u *KeepUsecase) ReleaseMany(ctx context.Context, cashierID int64, cartItemIDs []int64) ([]ReleaseResult, error) {
	if cashierID <= 0 {
		return nil, ErrNotAuthenticated
	}
	if len(cartItemIDs) == 0 {
		return nil, ErrValidation
	}

	results := make([]ReleaseResult, 0, len(cartItemIDs))
	for _, id := range cartItemIDs {
		err := u.Release(ctx, cashierID, id)
		if err != nil {
			results = append(results, ReleaseResult{CartItemID: id, Released: false, Error: err.Error()})
			continue
		}
		results = append(results, ReleaseResult{CartItemID: id, Released: true})
	}

	return results, nil
}
