package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fitstudio/internal/domain/account"
)

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
}

// AccountStoreForChangePassword defines the store interface needed by ChangePassword.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForChangePassword
}

// ErrNewPasswordSame is returned when the new password equals the current one.
var ErrNewPasswordSame = errors.New("new password must be different from current password")

// ExecuteChangePassword verifies the current password and stores a new hash.
// PRE: AccountID belongs to the signed-in account
// POST: Password hash replaced; failed-login counter and lock cleared
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if input.CurrentPassword == "" {
		return invalidField("current_password", "required")
	}
	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return fmt.Errorf("load account %s: %w", input.AccountID, err)
	}
	if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		slog.Info("auth_event", "event", "password_change_rejected", "account_id", acct.ID, "reason", "wrong_password")
		return invalidField("current_password", "incorrect")
	}
	if input.CurrentPassword == input.NewPassword {
		return invalid(ErrNewPasswordSame)
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		return &ValidationError{Message: "validation failed", Fields: map[string]string{"new_password": err.Error()}, cause: err}
	}
	acct.ResetFailedLogins()

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "password_changed", "account_id", acct.ID)
	return nil
}
