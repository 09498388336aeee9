package model

import "time"

// 在庫変動の種類
type ChangeType string

const (
	//POS確定による販売。在庫はKeep時に減算済みなので記録のみ。
	ChangeTypeSale ChangeType = "sale"

	//入荷による在庫増。
	ChangeTypeRestock ChangeType = "restock"

	//Keep解除による在庫戻し。
	ChangeTypeReturn ChangeType = "return"

	//Keepの在庫引き当て・手動補正。
	ChangeTypeAdjustment ChangeType = "adjustment"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "Cash"
	PaymentMethodTransfer PaymentMethod = "Transfer"
	PaymentMethodQRIS     PaymentMethod = "QRIS"
	PaymentMethodEDC      PaymentMethod = "EDC"
)

// 在庫台帳。追記専用で更新・削除はしない。
// 訂正は新しいadjustment行として積む。
type InventoryLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//同時に作られた行をまとめるID（複数明細の販売など）。
	//無い場合は自分のIDだけの単独トランザクション扱い。
	TransactionID *string `gorm:"type:uuid;index" json:"transaction_id"`

	VariantID int64 `gorm:"not null;index" json:"variant_id"`

	ChangeType ChangeType `gorm:"type:varchar(20);not null;index" json:"change_type"`

	//販売・引き当てはマイナス、入荷・返却はプラス。
	QuantityChange int64 `gorm:"not null" json:"quantity_change"`

	CashierID  int64 `gorm:"not null;index" json:"cashier_id"`
	CustomerID int64 `gorm:"index" json:"customer_id"`

	PaymentMethod *PaymentMethod `gorm:"type:varchar(20)" json:"payment_method"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (InventoryLog) TableName() string {
	return "inventory_log"
}
