package repository

import (
	"context"
	"errors"

	"heelwa/internal/domain/model"
	repo "heelwa/internal/repository"

	"gorm.io/gorm"
)

type InventoryLogGormRepository struct {
	db *gorm.DB
}

// DI
func NewInventoryLogGormRepository(db *gorm.DB) *InventoryLogGormRepository {
	return &InventoryLogGormRepository{db: db}
}

// 台帳に1行追記する。
// バリアント参照と非ゼロのquantity_change以外は検証しない（整合性は呼び出し側の責務）。
func (r *InventoryLogGormRepository) Create(ctx context.Context, entry model.InventoryLog) (model.InventoryLog, error) {
	if entry.VariantID <= 0 {
		return model.InventoryLog{}, errors.New("variant required")
	}
	if entry.QuantityChange == 0 {
		return model.InventoryLog{}, errors.New("quantity_change must be non-zero")
	}

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return model.InventoryLog{}, err
	}
	return entry, nil
}

// 台帳を条件で一覧取得。新しい順。
func (r *InventoryLogGormRepository) List(ctx context.Context, filter repo.InventoryLogFilter) ([]model.InventoryLog, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryLog{})

	if filter.ChangeType != nil {
		q = q.Where("change_type = ?", *filter.ChangeType)
	}
	if filter.VariantID != nil {
		q = q.Where("variant_id = ?", *filter.VariantID)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at <= ?", *filter.CreatedTo)
	}

	//新しい順
	q = q.Order("created_at DESC").Order("id DESC")

	// limit/offset
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	q = q.Limit(limit).Offset(filter.Offset)

	var entries []model.InventoryLog
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// 在庫に効いた変動の合計
// saleはKeep時に減算済みの記録行なので除く。
func (r *InventoryLogGormRepository) SumStockAffecting(ctx context.Context, variantID int64) (int64, error) {
	var sum *int64

	err := r.db.WithContext(ctx).
		Model(&model.InventoryLog{}).
		Select("SUM(quantity_change)").
		Where("variant_id = ? AND change_type <> ?", variantID, model.ChangeTypeSale).
		Scan(&sum).Error

	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
