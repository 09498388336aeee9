package model

import "time"

// カートの明細
// Kept=trueの明細はKeep（予約）経由でしか変更できない。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;index" json:"cart_id"`
	VariantID int64     `gorm:"not null;index" json:"variant_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	Kept      bool      `gorm:"not null;default:false;index" json:"kept"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
