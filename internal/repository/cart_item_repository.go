package repository

import (
	"context"

	"heelwa/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	ListKeptByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)

	// 同一バリアントの未Keep明細があれば数量加算、無ければ新規作成
	UpsertActiveByCartAndVariant(ctx context.Context, cartID int64, variantID int64, addQty int64) error

	//POSのAddToKeep用。最初からKept=trueで作る。
	CreateKept(ctx context.Context, item model.CartItem) (model.CartItem, error)

	CountKeptByCartID(ctx context.Context, cartID int64) (int64, error)

	//kept=!keptの行だけを反転する条件付き更新。
	//0行更新なら状態が既に変わっている（falseを返す）。
	SetKept(ctx context.Context, cartItemID int64, kept bool) (bool, error)

	DeleteByID(ctx context.Context, cartItemID int64) error

	//kept=falseの行だけを削除する条件付き削除。
	//Keep中なら0行削除でfalseを返す。
	DeleteActiveByID(ctx context.Context, cartItemID int64) (bool, error)
	IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error)

	//ユーザーIDごとのKeep件数（POSの顧客一覧バッジ）
	KeptCountsByUser(ctx context.Context) (map[int64]int64, error)
}
