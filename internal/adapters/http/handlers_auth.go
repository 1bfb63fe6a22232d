package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"

	"fitstudio/internal/adapters/http/middleware"
	accountStore "fitstudio/internal/adapters/storage/account"
	"fitstudio/internal/application/listutil"
	"fitstudio/internal/application/orchestrators"
)

// handleHealth reports liveness and, when wired, database reachability.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "database": "skipped"}
	if services.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := services.DB.PingContext(ctx); err != nil {
			slog.Warn("health_event", "event", "db_unreachable", "error", err)
			status["status"] = "degraded"
			status["database"] = "unreachable"
			respondData(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	respondData(w, http.StatusOK, status)
}

// handleCSRFToken hands out a token for form posts such as the public lead form.
func handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"token": csrf.Token(r)})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionView struct {
	Token     string    `json:"token,omitempty"`
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	ClientID  string    `json:"client_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toSessionView(s middleware.Session, token string) sessionView {
	return sessionView{
		Token:     token,
		AccountID: s.AccountID,
		Email:     s.Email,
		Name:      s.Name,
		Role:      s.Role,
		ClientID:  s.ClientID,
		ExpiresAt: s.CreatedAt.Add(middleware.SessionTTL),
	}
}

// handleLogin handles POST /api/auth/login. The token is set as a cookie and
// returned in the body for bearer clients.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !bind(w, r, &req) {
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		Now:          timeNow,
	})
	switch {
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error(), nil)
		return
	case errors.Is(err, orchestrators.ErrAccountLocked):
		respondError(w, http.StatusLocked, err.Error(), nil)
		return
	case err != nil:
		internalError(w, r, err)
		return
	}

	sess := middleware.Session{
		AccountID: result.AccountID,
		Email:     result.Email,
		Name:      result.Name,
		Role:      result.Role,
		ClientID:  result.ClientID,
		CreatedAt: timeNow(),
	}
	token, err := sessions.Create(r.Context(), sess)
	if err != nil {
		internalError(w, r, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	respondData(w, http.StatusOK, toSessionView(sess, token))
}

// handleLogout handles POST /api/auth/logout. It succeeds with or without a session.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if err := sessions.Delete(r.Context(), token); err != nil {
			slog.Warn("auth_event", "event", "logout_delete_failed", "error", err)
		}
	}
	middleware.ClearSessionCookie(w)
	respondData(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// handleMe handles GET /api/auth/me.
func handleMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	respondData(w, http.StatusOK, toSessionView(sess, ""))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=12,max=128"`
}

// handlePasswordChange handles POST /api/auth/password for the signed-in account.
func handlePasswordChange(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !bind(w, r, &req) {
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       sess.AccountID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}, orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// handleListAccounts handles GET /api/accounts?role=. Password hashes never leave the store.
func handleListAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pp := listutil.ParsePageParams(r.URL.Query())
	filter := accountStore.ListFilter{Role: r.URL.Query().Get("role")}

	total, err := stores.AccountStore.Count(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	page := listutil.NewPageInfo(pp.Page, pp.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	accounts, err := stores.AccountStore.List(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondList(w, mapSlice(accounts, toAccountView), page)
}

type createAccountRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"max=100"`
	Password string `json:"password" validate:"required,min=12"`
	Role     string `json:"role" validate:"required,oneof=admin trainer client"`
	ClientID string `json:"client_id" validate:"required_if=Role client"`
}

// handleCreateAccount handles POST /api/accounts.
func handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !bind(w, r, &req) {
		return
	}
	acct, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
		ClientID: req.ClientID,
	}, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		ClientStore:  stores.ClientStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toAccountView(acct))
}
