package usecase

import (
	"errors"
	"fmt"
)

var (
	//401 認証なしでのカート操作
	ErrNotAuthenticated = errors.New("not authenticated")

	//409 Keep中の明細への直接変更・削除
	ErrItemLocked = errors.New("item locked")

	//409 4件目のKeep
	ErrCapExceeded = errors.New("keep limit reached")

	//409 在庫不足
	ErrInsufficientStock = errors.New("insufficient stock")

	//409 Keepされていない明細へのrelease
	ErrNotKept = errors.New("item not kept")

	//400 他人の明細・未Keep明細を含む販売確定
	ErrInvalidSelection = errors.New("invalid selection")

	//400 支払い方法が不正
	ErrInvalidPayment = errors.New("invalid payment method")

	//400 入力不足
	ErrValidation = errors.New("validation error")

	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")

	//403 権限
	ErrForbidden = errors.New("forbidden")

	//競合
	ErrConflict = errors.New("conflict")

	//500
	ErrInternal = errors.New("internal error")
)

// 台帳とカート明細の書き込みが片方だけ適用された状態。
// 自動リトライせず、IDを添えてオペレーターに知らせる。
type InconsistentStateError struct {
	CartItemID int64
	VariantID  int64
	EntryID    int64
	Step       string
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("inconsistent state at %s: cart_item=%d variant=%d entry=%d",
		e.Step, e.CartItemID, e.VariantID, e.EntryID)
}

func AsInconsistentState(err error) (*InconsistentStateError, bool) {
	var ie *InconsistentStateError
	ok := errors.As(err, &ie)
	return ie, ok
}
