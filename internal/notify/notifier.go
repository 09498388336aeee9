package notify

import "context"

// 在庫・カートの変更をUI側のポーリングに知らせるための通知。
// コアの整合性はDB側で担保していて、通知はあくまで再読込の合図。
// 失敗してもエラーは返さない（fire-and-forget）。
type Notifier interface {
	StockChanged(ctx context.Context, variantID int64)
	CartChanged(ctx context.Context, userID int64)
}

// 通知先が無いときのダミー
type NopNotifier struct{}

func (NopNotifier) StockChanged(ctx context.Context, variantID int64) {}

func (NopNotifier) CartChanged(ctx context.Context, userID int64) {}
