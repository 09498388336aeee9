package repository

import (
	"context"
	"errors"
	"strings"

	"heelwa/internal/domain/model"
	repo "heelwa/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 公開商品を名前順で返す（在庫一覧用）
func (r *ProductGormRepository) ListActive(ctx context.Context, q string) ([]model.Product, error) {
	tx := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("is_active = ?", true)

	if strings.TrimSpace(q) != "" {
		like := "%" + strings.TrimSpace(q) + "%"
		tx = tx.Where("name ILIKE ?", like)
	}

	var products []model.Product
	if err := tx.Order("name asc").Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}
