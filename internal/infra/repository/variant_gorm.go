package repository

import (
	"context"
	"errors"
	"strings"

	"heelwa/internal/domain/model"
	repo "heelwa/internal/repository"

	"gorm.io/gorm"
)

type VariantGormRepository struct {
	db *gorm.DB
}

// DI
func NewVariantGormRepository(db *gorm.DB) *VariantGormRepository {
	return &VariantGormRepository{db: db}
}

// IDでバリアントを取得
func (r *VariantGormRepository) FindByID(ctx context.Context, variantID int64) (model.Variant, error) {
	var v model.Variant
	err := r.db.WithContext(ctx).First(&v, variantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Variant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Variant{}, err
	}
	return v, nil
}

// 商品名の部分一致でバリアントを検索（公開商品のみ）
func (r *VariantGormRepository) SearchByProductName(ctx context.Context, q string, limit int) ([]repo.VariantWithProduct, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	like := "%" + strings.TrimSpace(q) + "%"

	var rows []repo.VariantWithProduct
	err := r.db.WithContext(ctx).
		Table("product_variants").
		Select("product_variants.*, products.name AS product_name").
		Joins("join products on products.id = product_variants.product_id").
		Where("products.is_active = ? AND products.deleted_at IS NULL", true).
		Where("products.name ILIKE ?", like).
		Order("products.name asc").Order("product_variants.id asc").
		Limit(limit).
		Scan(&rows).Error

	if err != nil {
		return []repo.VariantWithProduct{}, err
	}
	return rows, nil
}

// 商品配下のバリアント一覧
func (r *VariantGormRepository) ListByProductID(ctx context.Context, productID int64) ([]model.Variant, error) {
	var variants []model.Variant

	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id asc").
		Find(&variants).Error; err != nil {
		return []model.Variant{}, err
	}

	return variants, nil
}

// 在庫が足りるときだけ減らす
// read-then-writeにせず1本の条件付きUPDATEで行う。
func (r *VariantGormRepository) DecreaseStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Variant{}).
		Where("id = ? AND stock_quantity >= ?", variantID, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 在庫戻し（Keep解除・入荷）
func (r *VariantGormRepository) IncreaseStock(ctx context.Context, variantID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Variant{}).
		Where("id = ?", variantID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
