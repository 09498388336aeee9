package usecase

import (
	"context"

	repo "heelwa/internal/repository"
)

// CatalogUsecase はカタログの読み取り口。
// 商品・バリアントのCRUDは別システムの管轄で、ここは参照だけ。
type CatalogUsecase struct {
	variantRepo repo.VariantRepository
	productRepo repo.ProductRepository
}

func NewCatalogUsecase(variantRepo repo.VariantRepository, productRepo repo.ProductRepository) *CatalogUsecase {
	return &CatalogUsecase{variantRepo: variantRepo, productRepo: productRepo}
}

type VariantDetailResponse struct {
	ID            int64  `json:"id"`
	ProductID     int64  `json:"product_id"`
	ProductName   string `json:"product_name"`
	SKU           string `json:"sku"`
	Color         string `json:"color"`
	Size          string `json:"size"`
	Price         int64  `json:"price"`
	StockQuantity int64  `json:"stock_quantity"`
	ImageURL      string `json:"image_url"`
}

// GetVariant はバリアント1件を商品名つきで返す。
func (u *CatalogUsecase) GetVariant(ctx context.Context, variantID int64) (VariantDetailResponse, error) {
	if variantID <= 0 {
		return VariantDetailResponse{}, ErrValidation
	}

	v, err := u.variantRepo.FindByID(ctx, variantID)
	if err == repo.ErrNotFound {
		return VariantDetailResponse{}, repo.ErrNotFound
	}
	if err != nil {
		return VariantDetailResponse{}, ErrInternal
	}

	name := ""
	if p, err := u.productRepo.FindByID(ctx, v.ProductID); err == nil {
		name = p.Name
	}

	return VariantDetailResponse{
		ID:            v.ID,
		ProductID:     v.ProductID,
		ProductName:   name,
		SKU:           v.SKU,
		Color:         v.Color,
		Size:          v.Size,
		Price:         v.Price,
		StockQuantity: v.StockQuantity,
		ImageURL:      v.ImageURL,
	}, nil
}

// SearchVariants は商品名の部分一致でバリアントを探す。
func (u *CatalogUsecase) SearchVariants(ctx context.Context, q string, limit int) ([]repo.VariantWithProduct, error) {
	if len(q) > 100 {
		return nil, ErrValidation
	}

	rows, err := u.variantRepo.SearchByProductName(ctx, q, limit)
	if err != nil {
		return nil, ErrInternal
	}
	return rows, nil
}
