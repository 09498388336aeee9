package repository

import (
	"context"
	"errors"
	"time"

	"heelwa/internal/domain/model"
	repo "heelwa/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

// カート明細を一覧取得
func (r *CartItemGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

// Keep中の明細だけを一覧取得（POS画面用）
func (r *CartItemGormRepository) ListKeptByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("cart_id = ? AND kept = ?", cartID, true).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

// 明細を取得
func (r *CartItemGormRepository) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	var item model.CartItem

	err := r.db.WithContext(ctx).
		Where("id = ?", cartItemID).
		First(&item).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

// 同一バリアントの未Keep明細は数量加算
// Keep中の明細は対象外（別明細として作る）。
func (r *CartItemGormRepository) UpsertActiveByCartAndVariant(ctx context.Context, cartID int64, variantID int64, addQty int64) error {
	if addQty <= 0 {
		return errors.New("invalid quantity")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.CartItem

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_id = ? AND variant_id = ? AND kept = ?", cartID, variantID, false).
			First(&item).Error

		if err == nil {
			// 既存ありだったら数量を増やす
			newQty := item.Quantity + addQty

			res := tx.Model(&model.CartItem{}).
				Where("id = ?", item.ID).
				Update("quantity", newQty)

			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		//無い場合は新規作成
		now := time.Now()
		newItem := model.CartItem{
			CartID:    cartID,
			VariantID: variantID,
			Quantity:  addQty,
			Kept:      false,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := tx.Create(&newItem).Error; err != nil {
			return err
		}

		return nil
	})
}

// 最初からKept=trueで明細を作る（POSのAddToKeep）
func (r *CartItemGormRepository) CreateKept(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	item.Kept = true
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

// カート内のKeep件数
func (r *CartItemGormRepository) CountKeptByCartID(ctx context.Context, cartID int64) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("cart_id = ? AND kept = ?", cartID, true).
		Count(&count).Error

	if err != nil {
		return 0, err
	}
	return count, nil
}

// kept反転の条件付き更新
// 既に目的の状態なら0行更新になりfalseを返す。
func (r *CartItemGormRepository) SetKept(ctx context.Context, cartItemID int64, kept bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ? AND kept = ?", cartItemID, !kept).
		Update("kept", kept)

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 明細を削除
func (r *CartItemGormRepository) DeleteByID(ctx context.Context, cartItemID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CartItem{}, cartItemID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 未Keepの明細だけを削除
// Keep中の明細は0行削除になりfalseを返す。
func (r *CartItemGormRepository) DeleteActiveByID(ctx context.Context, cartItemID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND kept = ?", cartItemID, false).
		Delete(&model.CartItem{})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

//cartItemが、そのuserのカートに属しているかを判定

func (r *CartItemGormRepository) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Table("cart_items").
		Joins("join carts on carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", cartItemID, userID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ユーザーIDごとのKeep件数
func (r *CartItemGormRepository) KeptCountsByUser(ctx context.Context) (map[int64]int64, error) {
	type row struct {
		UserID int64
		Cnt    int64
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("carts.user_id AS user_id, COUNT(*) AS cnt").
		Joins("join carts on carts.id = cart_items.cart_id").
		Where("cart_items.kept = ?", true).
		Group("carts.user_id").
		Scan(&rows).Error

	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int64, len(rows))
	for _, r := range rows {
		counts[r.UserID] = r.Cnt
	}
	return counts, nil
}
