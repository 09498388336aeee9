package model

import "time"

// 商品バリアント（色・サイズごとのSKU）。
// StockQuantityはinventory_log経由の操作以外で更新しない。
type Variant struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID     int64     `gorm:"not null;index" json:"product_id"`
	SKU           string    `gorm:"type:varchar(100);uniqueIndex;column:sku" json:"sku"`
	Color         string    `gorm:"type:varchar(100)" json:"color"`
	Size          string    `gorm:"type:varchar(50)" json:"size"`
	Price         int64     `gorm:"not null" json:"price"`
	StockQuantity int64     `gorm:"not null;default:0" json:"stock_quantity"`
	ImageURL      string    `gorm:"type:varchar(500)" json:"image_url"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Variant) TableName() string {
	return "product_variants"
}
