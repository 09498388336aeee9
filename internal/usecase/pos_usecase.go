package usecase

import (
	"context"
	"sort"

	"heelwa/internal/domain/model"
	"heelwa/internal/notify"
	repo "heelwa/internal/repository"

	"github.com/google/uuid"
)

// PosUsecase は店頭レジ（POS）の業務ロジックです。
// 店員が顧客を選び、その顧客のKeep明細を販売確定または解除します。
type PosUsecase struct {
	tx           repo.TransactionManager
	userRepo     repo.UserRepository
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	variantRepo  repo.VariantRepository
	productRepo  repo.ProductRepository
	notifier     notify.Notifier
}

func NewPosUsecase(
	tx repo.TransactionManager,
	userRepo repo.UserRepository,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	variantRepo repo.VariantRepository,
	productRepo repo.ProductRepository,
	notifier notify.Notifier,
) *PosUsecase {
	return &PosUsecase{
		tx:           tx,
		userRepo:     userRepo,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		variantRepo:  variantRepo,
		productRepo:  productRepo,
		notifier:     notifier,
	}
}

// 顧客一覧の1行。Keep件数つき。
type PosCustomerResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	KeepCount int64  `json:"keep_count"`
}

// POS画面のKeep明細
type KeptLineResponse struct {
	ID        int64  `json:"id"`
	VariantID int64  `json:"variant_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	SKU       string `json:"sku"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

type KeptItemsResponse struct {
	CustomerID int64              `json:"customer_id"`
	Items      []KeptLineResponse `json:"items"`
	Total      int64              `json:"total"`
}

type AddToKeepInput struct {
	CustomerID int64
	VariantID  int64
	Quantity   int64
}

type FinalizeSaleInput struct {
	CustomerID    int64
	CartItemIDs   []int64
	PaymentMethod string
}

// 販売確定のレシート。1つのtransaction_idを全行で共有する。
type SaleReceiptResponse struct {
	TransactionID string             `json:"transaction_id"`
	CustomerID    int64              `json:"customer_id"`
	PaymentMethod string             `json:"payment_method"`
	Items         []KeptLineResponse `json:"items"`
	Total         int64              `json:"total"`
}

// ListCustomers は顧客一覧をKeep件数つきで返す。
// Keepを持つ顧客を先頭に、件数の多い順→username順。
func (u *PosUsecase) ListCustomers(ctx context.Context, cashierID int64) ([]PosCustomerResponse, error) {
	if cashierID <= 0 {
		return nil, ErrNotAuthenticated
	}

	users, err := u.userRepo.ListCustomers(ctx)
	if err != nil {
		return nil, ErrInternal
	}

	counts, err := u.cartItemRepo.KeptCountsByUser(ctx)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]PosCustomerResponse, 0, len(users))
	for _, usr := range users {
		out = append(out, PosCustomerResponse{
			ID:        usr.ID,
			Username:  usr.Username,
			Email:     usr.Email,
			KeepCount: counts[usr.ID],
		})
	}

	//usersはusername昇順で来るのでstableで並べ替える
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].KeepCount > out[j].KeepCount
	})

	return out, nil
}

// CustomerKeeps は選択した顧客のKeep明細だけを返す。
// Activeな明細はこの画面の対象外。
func (u *PosUsecase) CustomerKeeps(ctx context.Context, cashierID int64, customerID int64) (KeptItemsResponse, error) {
	if cashierID <= 0 {
		return KeptItemsResponse{}, ErrNotAuthenticated
	}
	if customerID <= 0 {
		return KeptItemsResponse{}, ErrValidation
	}

	resp := KeptItemsResponse{CustomerID: customerID, Items: []KeptLineResponse{}}

	cart, err := u.cartRepo.FindByUserID(ctx, customerID)
	if err == repo.ErrNotFound {
		return resp, nil
	}
	if err != nil {
		return KeptItemsResponse{}, ErrInternal
	}

	items, err := u.cartItemRepo.ListKeptByCartID(ctx, cart.ID)
	if err != nil {
		return KeptItemsResponse{}, ErrInternal
	}

	for _, it := range items {
		line, err := u.buildKeptLine(ctx, it)
		if err != nil {
			continue
		}
		resp.Items = append(resp.Items, line)
		resp.Total += line.LineTotal
	}

	return resp, nil
}

// AddToKeep は店員が顧客のカートに直接Keep明細を作る。
// 昇格と同じ規律（上限・条件付き在庫減算・adjustment行）で動く。
func (u *PosUsecase) AddToKeep(ctx context.Context, cashierID int64, in AddToKeepInput) error {
	if cashierID <= 0 {
		return ErrNotAuthenticated
	}
	if in.CustomerID <= 0 || in.VariantID <= 0 {
		return ErrValidation
	}
	if in.Quantity < 1 {
		return ErrValidation
	}

	customer, err := u.userRepo.FindByID(ctx, in.CustomerID)
	if err != nil {
		return ErrInternal
	}
	if customer == nil {
		return repo.ErrNotFound
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateByUserID(ctx, in.CustomerID)
		if err != nil {
			return ErrInternal
		}

		if _, err := r.Carts().LockByID(ctx, cart.ID); err != nil {
			return ErrInternal
		}

		count, err := r.CartItems().CountKeptByCartID(ctx, cart.ID)
		if err != nil {
			return ErrInternal
		}
		if count >= KeepLimit {
			return ErrCapExceeded
		}

		ok, err := r.Variants().DecreaseStockIfEnough(ctx, in.VariantID, in.Quantity)
		if err != nil {
			return ErrInternal
		}
		if !ok {
			return ErrInsufficientStock
		}

		if _, err := r.CartItems().CreateKept(ctx, model.CartItem{
			CartID:    cart.ID,
			VariantID: in.VariantID,
			Quantity:  in.Quantity,
		}); err != nil {
			return ErrInternal
		}

		if _, err := r.InventoryLog().Create(ctx, model.InventoryLog{
			VariantID:      in.VariantID,
			ChangeType:     model.ChangeTypeAdjustment,
			QuantityChange: -in.Quantity,
			CashierID:      cashierID,
			CustomerID:     in.CustomerID,
		}); err != nil {
			return ErrInternal
		}

		return nil
	})

	if err != nil {
		return err
	}

	u.notifier.StockChanged(ctx, in.VariantID)
	return nil
}

// FinalizeSale は選択したKeep明細を販売として確定する。
// 在庫はKeep昇格時に減算済みなので、ここでは減らさない。
// 台帳にsale行を積み、明細を削除する。両方まとめて適用するか、
// どちらも適用しないか（トランザクション）。
func (u *PosUsecase) FinalizeSale(ctx context.Context, cashierID int64, in FinalizeSaleInput) (SaleReceiptResponse, error) {
	if cashierID <= 0 {
		return SaleReceiptResponse{}, ErrNotAuthenticated
	}
	if in.CustomerID <= 0 {
		return SaleReceiptResponse{}, ErrValidation
	}
	if len(in.CartItemIDs) == 0 {
		return SaleReceiptResponse{}, ErrInvalidSelection
	}

	method, ok := parsePaymentMethod(in.PaymentMethod)
	if !ok {
		return SaleReceiptResponse{}, ErrInvalidPayment
	}

	//同じIDを2回渡された場合も全体を拒否する
	seen := make(map[int64]bool, len(in.CartItemIDs))
	for _, id := range in.CartItemIDs {
		if id <= 0 || seen[id] {
			return SaleReceiptResponse{}, ErrInvalidSelection
		}
		seen[id] = true
	}

	receipt := SaleReceiptResponse{
		CustomerID:    in.CustomerID,
		PaymentMethod: string(method),
		Items:         []KeptLineResponse{},
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, in.CustomerID)
		if err == repo.ErrNotFound {
			return ErrInvalidSelection
		}
		if err != nil {
			return ErrInternal
		}

		//Promote/Releaseと同じくカート行ロックで直列化
		if _, err := r.Carts().LockByID(ctx, cart.ID); err != nil {
			return ErrInternal
		}

		//全明細を検証してから書く。1件でも不正なら全体拒否。
		items := make([]model.CartItem, 0, len(in.CartItemIDs))
		for _, id := range in.CartItemIDs {
			item, err := r.CartItems().FindByID(ctx, id)
			if err == repo.ErrNotFound {
				return ErrInvalidSelection
			}
			if err != nil {
				return ErrInternal
			}
			if item.CartID != cart.ID || !item.Kept {
				return ErrInvalidSelection
			}
			items = append(items, item)
		}

		//明細は消える前にレシート用のスナップショットを取る
		for _, item := range items {
			v, err := r.Variants().FindByID(ctx, item.VariantID)
			if err != nil {
				return ErrInternal
			}

			name := ""
			if p, err := u.productRepo.FindByID(ctx, v.ProductID); err == nil {
				name = p.Name
			}

			line := KeptLineResponse{
				ID:        item.ID,
				VariantID: item.VariantID,
				Name:      name,
				Color:     v.Color,
				Size:      v.Size,
				SKU:       v.SKU,
				Price:     v.Price,
				Quantity:  item.Quantity,
				LineTotal: v.Price * item.Quantity,
			}
			receipt.Items = append(receipt.Items, line)
			receipt.Total += line.LineTotal
		}

		txID := uuid.NewString()
		receipt.TransactionID = txID

		for _, item := range items {
			entry, err := r.InventoryLog().Create(ctx, model.InventoryLog{
				TransactionID:  &txID,
				VariantID:      item.VariantID,
				ChangeType:     model.ChangeTypeSale,
				QuantityChange: -item.Quantity,
				CashierID:      cashierID,
				CustomerID:     in.CustomerID,
				PaymentMethod:  &method,
			})
			if err != nil {
				return ErrInternal
			}

			//台帳に積んだのに明細が消せない状態はそのまま残さない
			if err := r.CartItems().DeleteByID(ctx, item.ID); err != nil {
				return &InconsistentStateError{
					CartItemID: item.ID,
					VariantID:  item.VariantID,
					EntryID:    entry.ID,
					Step:       "finalize sale cart item delete",
				}
			}
		}

		return nil
	})

	if err != nil {
		return SaleReceiptResponse{}, err
	}

	u.notifier.CartChanged(ctx, in.CustomerID)
	return receipt, nil
}

func (u *PosUsecase) buildKeptLine(ctx context.Context, it model.CartItem) (KeptLineResponse, error) {
	v, err := u.variantRepo.FindByID(ctx, it.VariantID)
	if err != nil {
		return KeptLineResponse{}, err
	}

	name := ""
	if p, err := u.productRepo.FindByID(ctx, v.ProductID); err == nil {
		name = p.Name
	}

	return KeptLineResponse{
		ID:        it.ID,
		VariantID: it.VariantID,
		Name:      name,
		Color:     v.Color,
		Size:      v.Size,
		SKU:       v.SKU,
		Price:     v.Price,
		Quantity:  it.Quantity,
		LineTotal: v.Price * it.Quantity,
	}, nil
}

func parsePaymentMethod(s string) (model.PaymentMethod, bool) {
	switch model.PaymentMethod(s) {
	case model.PaymentMethodCash, model.PaymentMethodTransfer, model.PaymentMethodQRIS, model.PaymentMethodEDC:
		return model.PaymentMethod(s), true
	default:
		return "", false
	}
}
