package usecase

import (
	"context"
	"strconv"
	"time"

	"heelwa/internal/domain/model"
	repo "heelwa/internal/repository"
)

// LedgerUsecase は在庫台帳の読み取り（レポート）を扱います。
// 追記は各業務フロー（Keep・POS・入荷）がトランザクション内で行うので、
// ここには書き込みの入口はありません。
type LedgerUsecase struct {
	logRepo     repo.InventoryLogRepository
	variantRepo repo.VariantRepository
	productRepo repo.ProductRepository
	userRepo    repo.UserRepository
}

func NewLedgerUsecase(
	logRepo repo.InventoryLogRepository,
	variantRepo repo.VariantRepository,
	productRepo repo.ProductRepository,
	userRepo repo.UserRepository,
) *LedgerUsecase {
	return &LedgerUsecase{
		logRepo:     logRepo,
		variantRepo: variantRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

type LedgerListInput struct {
	ChangeType string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// 台帳1行の表示用
type LedgerLineResponse struct {
	ID             int64  `json:"id"`
	VariantID      int64  `json:"variant_id"`
	SKU            string `json:"sku"`
	ProductName    string `json:"product_name"`
	Color          string `json:"color"`
	Size           string `json:"size"`
	ChangeType     string `json:"change_type"`
	QuantityChange int64  `json:"quantity_change"`
	Price          int64  `json:"price"`
}

// transaction_id単位のまとまり（レシート相当）。
// transaction_idが無い行は自分のIDだけの単独グループ。
type LedgerGroupResponse struct {
	Key           string               `json:"key"`
	TransactionID *string              `json:"transaction_id"`
	CreatedAt     time.Time            `json:"created_at"`
	Cashier       string               `json:"cashier"`
	Customer      string               `json:"customer"`
	PaymentMethod string               `json:"payment_method"`
	Items         []LedgerLineResponse `json:"items"`
	TotalQuantity int64                `json:"total_quantity"`
	TotalValue    int64                `json:"total_value"`
}

type LedgerReportResponse struct {
	Groups         []LedgerGroupResponse `json:"groups"`
	TotalItemsSold int64                 `json:"total_items_sold"`
	TotalRevenue   int64                 `json:"total_revenue"`
}

// 在庫と台帳の突き合わせ結果。
// 初期在庫 + LedgerDelta = StockQuantity が成り立たなければ要調査。
type ConsistencyResponse struct {
	VariantID     int64 `json:"variant_id"`
	StockQuantity int64 `json:"stock_quantity"`
	LedgerDelta   int64 `json:"ledger_delta"`
}

// List は台帳をtransaction単位にまとめて返す。
// 新しい順。フィルタと期間で有限に絞れる。
func (u *LedgerUsecase) List(ctx context.Context, cashierID int64, in LedgerListInput) (LedgerReportResponse, error) {
	if cashierID <= 0 {
		return LedgerReportResponse{}, ErrNotAuthenticated
	}

	filter := repo.InventoryLogFilter{
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}

	if in.ChangeType != "" {
		ct := model.ChangeType(in.ChangeType)
		switch ct {
		case model.ChangeTypeSale, model.ChangeTypeRestock, model.ChangeTypeReturn, model.ChangeTypeAdjustment:
			filter.ChangeType = &ct
		default:
			return LedgerReportResponse{}, ErrValidation
		}
	}

	entries, err := u.logRepo.List(ctx, filter)
	if err != nil {
		return LedgerReportResponse{}, ErrInternal
	}

	resp := LedgerReportResponse{Groups: []LedgerGroupResponse{}}

	//キャッシュしながらまとめる（同じ変動内で同じバリアントが並ぶため）
	variantCache := map[int64]model.Variant{}
	nameCache := map[int64]string{}
	userCache := map[int64]string{}
	groupIndex := map[string]int{}

	for _, e := range entries {
		key := strconv.FormatInt(e.ID, 10)
		if e.TransactionID != nil {
			key = *e.TransactionID
		}

		idx, exists := groupIndex[key]
		if !exists {
			g := LedgerGroupResponse{
				Key:           key,
				TransactionID: e.TransactionID,
				CreatedAt:     e.CreatedAt,
				Cashier:       u.username(ctx, userCache, e.CashierID),
				Customer:      u.username(ctx, userCache, e.CustomerID),
				Items:         []LedgerLineResponse{},
			}
			if e.PaymentMethod != nil {
				g.PaymentMethod = string(*e.PaymentMethod)
			}
			resp.Groups = append(resp.Groups, g)
			idx = len(resp.Groups) - 1
			groupIndex[key] = idx
		}

		line := LedgerLineResponse{
			ID:             e.ID,
			VariantID:      e.VariantID,
			ChangeType:     string(e.ChangeType),
			QuantityChange: e.QuantityChange,
		}

		if v, ok := u.variant(ctx, variantCache, e.VariantID); ok {
			line.SKU = v.SKU
			line.Color = v.Color
			line.Size = v.Size
			line.Price = v.Price
			line.ProductName = u.productName(ctx, nameCache, v.ProductID)
		}

		abs := e.QuantityChange
		if abs < 0 {
			abs = -abs
		}

		g := &resp.Groups[idx]
		g.Items = append(g.Items, line)
		g.TotalQuantity += abs
		g.TotalValue += abs * line.Price

		if e.ChangeType == model.ChangeTypeSale {
			resp.TotalItemsSold += abs
			resp.TotalRevenue += abs * line.Price
		}
	}

	return resp, nil
}

// CheckConsistency は1バリアントの在庫と台帳の差分を返す。
// saleは記録のみの行なので合算から除いてある。
func (u *LedgerUsecase) CheckConsistency(ctx context.Context, cashierID int64, variantID int64) (ConsistencyResponse, error) {
	if cashierID <= 0 {
		return ConsistencyResponse{}, ErrNotAuthenticated
	}
	if variantID <= 0 {
		return ConsistencyResponse{}, ErrValidation
	}

	v, err := u.variantRepo.FindByID(ctx, variantID)
	if err == repo.ErrNotFound {
		return ConsistencyResponse{}, repo.ErrNotFound
	}
	if err != nil {
		return ConsistencyResponse{}, ErrInternal
	}

	delta, err := u.logRepo.SumStockAffecting(ctx, variantID)
	if err != nil {
		return ConsistencyResponse{}, ErrInternal
	}

	return ConsistencyResponse{
		VariantID:     variantID,
		StockQuantity: v.StockQuantity,
		LedgerDelta:   delta,
	}, nil
}

func (u *LedgerUsecase) variant(ctx context.Context, cache map[int64]model.Variant, id int64) (model.Variant, bool) {
	if v, ok := cache[id]; ok {
		return v, true
	}
	v, err := u.variantRepo.FindByID(ctx, id)
	if err != nil {
		return model.Variant{}, false
	}
	cache[id] = v
	return v, true
}

func (u *LedgerUsecase) productName(ctx context.Context, cache map[int64]string, productID int64) string {
	if name, ok := cache[productID]; ok {
		return name
	}
	name := ""
	if p, err := u.productRepo.FindByID(ctx, productID); err == nil {
		name = p.Name
	}
	cache[productID] = name
	return name
}

func (u *LedgerUsecase) username(ctx context.Context, cache map[int64]string, userID int64) string {
	if userID <= 0 {
		return "-"
	}
	if name, ok := cache[userID]; ok {
		return name
	}
	name := "-"
	if usr, err := u.userRepo.FindByID(ctx, userID); err == nil && usr != nil {
		name = usr.Username
	}
	cache[userID] = name
	return name
}
