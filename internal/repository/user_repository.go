package repository

import (
	"context"
	"errors"

	"heelwa/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error

	//POSの顧客選択用。username昇順。
	ListCustomers(ctx context.Context) ([]model.User, error)
}
