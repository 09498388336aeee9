package usecase

import (
	"context"

	"heelwa/internal/notify"
	repo "heelwa/internal/repository"
)

// CartUsecase は買い物カートの業務ロジックです。
// Keep（予約）への昇格・解除は KeepUsecase が担当し、
// ここでは未Keep明細の追加・削除だけを扱います。
type CartUsecase struct {
	tx           repo.TransactionManager
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	variantRepo  repo.VariantRepository
	productRepo  repo.ProductRepository
	notifier     notify.Notifier
}

func NewCartUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	variantRepo repo.VariantRepository,
	productRepo repo.ProductRepository,
	notifier notify.Notifier,
) *CartUsecase {
	return &CartUsecase{
		tx:           tx,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		variantRepo:  variantRepo,
		productRepo:  productRepo,
		notifier:     notifier,
	}
}

// 表示用の明細。price*quantityを計算済みで返す。
type CartLineResponse struct {
	ID        int64  `json:"id"`
	VariantID int64  `json:"variant_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	ImageURL  string `json:"image_url"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	LineTotal int64  `json:"line_total"`
	Kept      bool   `json:"kept"`
}

// activeとkeptを分けて返す。
// keptは表示のみで、subtotalはactiveだけを合算する。
type CartResponse struct {
	Items     []CartLineResponse `json:"items"`
	KeptItems []CartLineResponse `json:"kept_items"`
	Subtotal  int64              `json:"subtotal"`
}

type AddCartInput struct {
	VariantID int64
	Quantity  int64
}

// GetCart はカート取得（無ければ空を返す、作成はしない）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, ErrNotAuthenticated
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return emptyCartResponse(), nil
	}
	if err != nil {
		return CartResponse{}, ErrInternal
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// AddItem はカートに追加（同一バリアントの未Keep明細は数量加算）。
// 在庫はここでは見ない。引き当てはKeepに昇格した時点で行う。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, ErrNotAuthenticated
	}
	if in.VariantID <= 0 {
		return CartResponse{}, ErrValidation
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return CartResponse{}, ErrValidation
	}

	//バリアント存在チェック（公開商品のみ）
	v, err := u.variantRepo.FindByID(ctx, in.VariantID)
	if err == repo.ErrNotFound {
		return CartResponse{}, ErrValidation
	}
	if err != nil {
		return CartResponse{}, ErrInternal
	}

	p, err := u.productRepo.FindByID(ctx, v.ProductID)
	if err != nil || !p.IsActive {
		return CartResponse{}, ErrValidation
	}

	//カート取得（無ければ作成）
	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, ErrInternal
	}

	if err := u.cartItemRepo.UpsertActiveByCartAndVariant(ctx, cart.ID, in.VariantID, qty); err != nil {
		return CartResponse{}, ErrInternal
	}

	u.notifier.CartChanged(ctx, userID)

	return u.buildCartResponse(ctx, cart.ID)
}

// RemoveItem は未Keep明細の削除。
// Keep中の明細はKeep解除（release）経由でしか消せない。
// 在庫は戻さない。未Keep明細は在庫を減らしていないため。
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, cartItemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, ErrNotAuthenticated
	}
	if cartItemID <= 0 {
		return CartResponse{}, ErrValidation
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return CartResponse{}, ErrInternal
	}
	if !owned {
		return CartResponse{}, repo.ErrNotFound
	}

	//kept=falseの行だけ消す条件付き削除
	deleted, err := u.cartItemRepo.DeleteActiveByID(ctx, cartItemID)
	if err != nil {
		return CartResponse{}, ErrInternal
	}
	if !deleted {
		//まだ存在するならKeep中
		if _, err := u.cartItemRepo.FindByID(ctx, cartItemID); err == nil {
			return CartResponse{}, ErrItemLocked
		}
		return CartResponse{}, repo.ErrNotFound
	}

	u.notifier.CartChanged(ctx, userID)

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return emptyCartResponse(), nil
	}
	if err != nil {
		return CartResponse{}, ErrInternal
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// BulkRemove は複数明細の一括削除。
// 1件でもKeep中ならErrItemLockedで全体を拒否する（部分適用しない）。
func (u *CartUsecase) BulkRemove(ctx context.Context, userID int64, cartItemIDs []int64) error {
	if userID <= 0 {
		return ErrNotAuthenticated
	}
	if len(cartItemIDs) == 0 {
		return ErrValidation
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return repo.ErrNotFound
		}
		if err != nil {
			return ErrInternal
		}

		//先に全件を検証してから消す
		for _, id := range cartItemIDs {
			item, err := r.CartItems().FindByID(ctx, id)
			if err == repo.ErrNotFound {
				return repo.ErrNotFound
			}
			if err != nil {
				return ErrInternal
			}
			if item.CartID != cart.ID {
				return repo.ErrNotFound
			}
			if item.Kept {
				return ErrItemLocked
			}
		}

		for _, id := range cartItemIDs {
			deleted, err := r.CartItems().DeleteActiveByID(ctx, id)
			if err != nil {
				return ErrInternal
			}
			if !deleted {
				//検証と削除の間にKeepされた。全体をロールバック。
				return ErrItemLocked
			}
		}

		return nil
	})

	if err == nil {
		u.notifier.CartChanged(ctx, userID)
	}
	return err
}

func emptyCartResponse() CartResponse {
	return CartResponse{
		Items:     []CartLineResponse{},
		KeptItems: []CartLineResponse{},
	}
}

// cartIDの明細をまとめてCartResponseを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, ErrInternal
	}

	resp := emptyCartResponse()

	for _, it := range items {
		v, err := u.variantRepo.FindByID(ctx, it.VariantID)
		if err != nil {
			continue
		}

		name := ""
		if p, err := u.productRepo.FindByID(ctx, v.ProductID); err == nil {
			name = p.Name
		}

		line := CartLineResponse{
			ID:        it.ID,
			VariantID: it.VariantID,
			Name:      name,
			Color:     v.Color,
			Size:      v.Size,
			ImageURL:  v.ImageURL,
			Price:     v.Price,
			Quantity:  it.Quantity,
			LineTotal: v.Price * it.Quantity,
			Kept:      it.Kept,
		}

		if it.Kept {
			resp.KeptItems = append(resp.KeptItems, line)
			continue
		}

		resp.Items = append(resp.Items, line)
		resp.Subtotal += line.LineTotal
	}

	return resp, nil
}
