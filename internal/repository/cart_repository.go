package repository

import (
	"context"

	"heelwa/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)

	//Keep上限と在庫チェックをカート単位で直列化するための行ロック。
	//トランザクション内でのみ使う。
	LockByID(ctx context.Context, cartID int64) (model.Cart, error)
}
