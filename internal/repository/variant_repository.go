package repository

import (
	"context"

	"heelwa/internal/domain/model"
)

// 検索結果に商品名を添えて返す
type VariantWithProduct struct {
	model.Variant
	ProductName string `json:"product_name"`
}

type VariantRepository interface {
	FindByID(ctx context.Context, variantID int64) (model.Variant, error)

	//商品名の部分一致でバリアントを検索（POSの商品検索）
	SearchByProductName(ctx context.Context, q string, limit int) ([]VariantWithProduct, error)

	ListByProductID(ctx context.Context, productID int64) ([]model.Variant, error)

	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error)

	// 在庫戻し（Keep解除・入荷）
	IncreaseStock(ctx context.Context, variantID int64, qty int64) error
}
