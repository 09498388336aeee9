package repository

import (
	"context"
	"errors"

	"heelwa/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品の取得だけを約束（カタログは読み取り専用の協力者）。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)

	//管理画面の在庫一覧用。qは商品名の部分一致。
	ListActive(ctx context.Context, q string) ([]model.Product, error)
}
