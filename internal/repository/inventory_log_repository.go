package repository

import (
	"context"
	"time"

	"heelwa/internal/domain/model"
)

//在庫台帳の絞り込み条件。

type InventoryLogFilter struct {
	ChangeType  *model.ChangeType
	VariantID   *int64
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// 追記と一覧取得だけ。更新・削除のメソッドは存在しない。
type InventoryLogRepository interface {
	Create(ctx context.Context, entry model.InventoryLog) (model.InventoryLog, error)

	//新しい順で取得。
	List(ctx context.Context, filter InventoryLogFilter) ([]model.InventoryLog, error)

	//saleは記録のみ（在庫はKeep時に減算済み）なので除外して合算する。
	//初期在庫＋この合計＝現在在庫、が常に成り立つ。
	SumStockAffecting(ctx context.Context, variantID int64) (int64, error)
}
