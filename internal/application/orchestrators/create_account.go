package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	accountstore "fitstudio/internal/adapters/storage/account"
	"fitstudio/internal/domain/account"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context, filter accountstore.ListFilter) (int, error)
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email    string
	Name     string
	Password string
	Role     string
	ClientID string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	ClientStore  ClientGetter // optional; verifies ClientID for client accounts
	GenerateID   func() string
	Now          func() time.Time
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteCreateAccount coordinates account creation.
// PRE: Valid email, password >= 12 chars, valid role
// POST: Account created with hashed password
// INVARIANT: Email must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (account.Account, error) {
	acct := account.Account{
		ID:        idFn(deps.GenerateID),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Name:      strings.TrimSpace(input.Name),
		Role:      input.Role,
		ClientID:  input.ClientID,
		CreatedAt: nowFn(deps.Now),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, invalid(err)
	}

	if _, err := deps.AccountStore.GetByEmail(ctx, acct.Email); err == nil {
		return account.Account{}, invalidField("email", ErrEmailAlreadyExists.Error())
	}
	if acct.ClientID != "" && deps.ClientStore != nil {
		if _, err := deps.ClientStore.GetByID(ctx, acct.ClientID); err != nil {
			return account.Account{}, err
		}
	}

	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, invalid(err)
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Account{}, err
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", acct.Role)
	return acct, nil
}

// ExecuteSeedAdmin creates the first admin account when none exists.
// PRE: Database is migrated
// POST: Admin account created if there are no admins; no-op otherwise
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) error {
	if email == "" || password == "" {
		slog.Info("auth_event", "event", "admin_seed_skipped", "reason", "not_configured")
		return nil
	}
	count, err := deps.AccountStore.Count(ctx, accountstore.ListFilter{Role: account.RoleAdmin})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:    email,
		Name:     "Studio Admin",
		Password: password,
		Role:     account.RoleAdmin,
	}, deps); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}
