package notify

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	StockChannel = "heelwa:stock"
	CartChannel  = "heelwa:cart"
)

// Redis pub/subで変更を配信する。
type RedisNotifier struct {
	rdb *redis.Client
}

func NewRedisNotifier(addr string) *RedisNotifier {
	r := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	return &RedisNotifier{rdb: r}
}

func (n *RedisNotifier) StockChanged(ctx context.Context, variantID int64) {
	//購読者がいなくても気にしない
	_ = n.rdb.Publish(ctx, StockChannel, strconv.FormatInt(variantID, 10)).Err()
}

func (n *RedisNotifier) CartChanged(ctx context.Context, userID int64) {
	_ = n.rdb.Publish(ctx, CartChannel, strconv.FormatInt(userID, 10)).Err()
}
