package usersapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"warden/cmd/identity"
	"warden/cmd/security/token"
)

// Handler wires the HTTP credential endpoints to the identity manager.
type Handler struct {
	log     *slog.Logger
	cfg     Config
	manager *identity.Manager
	tokens  *token.Manager
}

// NewHandler constructs a users Handler.
func NewHandler(log *slog.Logger, cfg Config, manager *identity.Manager, tokens *token.Manager) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if manager == nil {
		return nil, errors.New("usersapi: nil manager")
	}
	if tokens == nil {
		return nil, errors.New("usersapi: nil token manager")
	}
	return &Handler{log: log, cfg: cfg, manager: manager, tokens: tokens}, nil
}

// Register wires the users routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/users/profile", h.handleProfile)
	mux.HandleFunc("/api/users/password", h.handlePassword)
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "invalid request body")
		return
	}

	acc, err := h.manager.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		var ve identity.ValidationError
		switch {
		case errors.As(err, &ve):
			countOutcome("register", "invalid")
			writeFieldErrors(w, http.StatusBadRequest, "Invalid data", "the provided data is not valid", ve.Fields)
		case identity.IsConflict(err):
			countOutcome("register", "conflict")
			writeError(w, http.StatusConflict, "Email already exists", "email is already in use")
		default:
			countOutcome("register", "error")
			h.log.Error("users.register.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal error", "an unexpected error occurred")
		}
		return
	}

	countOutcome("register", "ok")
	writeJSON(w, http.StatusCreated, toAccountResponse(acc))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "invalid request body")
		return
	}

	fields := make(map[string]string)
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "email is required"
	}
	if strings.TrimSpace(req.Password) == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		countOutcome("login", "invalid")
		writeFieldErrors(w, http.StatusBadRequest, "Invalid data", "the provided data is not valid", fields)
		return
	}

	tok, acc, err := h.manager.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			countOutcome("login", "denied")
			writeError(w, http.StatusUnauthorized, "Invalid credentials", "incorrect email or password")
			return
		}
		countOutcome("login", "error")
		h.log.Error("users.login.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal error", "an unexpected error occurred")
		return
	}

	countOutcome("login", "ok")
	writeJSON(w, http.StatusOK, loginResponse{
		Token: tok,
		Type:  "Bearer",
		User:  toAccountResponse(acc),
	})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetProfile(w, r)
	case http.MethodPut:
		h.handleUpdateProfile(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	acc, err := h.manager.GetProfile(r.Context(), accountID)
	if err != nil {
		if identity.IsNotFound(err) {
			// The token outlived the account.
			countOutcome("get_profile", "not_found")
			writeError(w, http.StatusNotFound, "Account not found", "account no longer exists")
			return
		}
		countOutcome("get_profile", "error")
		h.log.Error("users.profile.get.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal error", "an unexpected error occurred")
		return
	}

	countOutcome("get_profile", "ok")
	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "invalid request body")
		return
	}

	acc, err := h.manager.UpdateProfile(r.Context(), accountID, req.Name, req.Email)
	if err != nil {
		var ve identity.ValidationError
		switch {
		case errors.As(err, &ve):
			countOutcome("update_profile", "invalid")
			writeFieldErrors(w, http.StatusBadRequest, "Invalid data", "the provided data is not valid", ve.Fields)
		case identity.IsConflict(err):
			countOutcome("update_profile", "conflict")
			writeError(w, http.StatusConflict, "Email already exists", "email is already in use")
		case identity.IsNotFound(err):
			countOutcome("update_profile", "not_found")
			writeError(w, http.StatusNotFound, "Account not found", "account no longer exists")
		default:
			countOutcome("update_profile", "error")
			h.log.Error("users.profile.update.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal error", "an unexpected error occurred")
		}
		return
	}

	countOutcome("update_profile", "ok")
	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (h *Handler) handlePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	accountID, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "invalid request body")
		return
	}

	err := h.manager.ChangePassword(r.Context(), accountID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidPassword):
			countOutcome("change_password", "denied")
			writeError(w, http.StatusBadRequest, "Invalid password", "current password is incorrect")
		case errors.Is(err, identity.ErrPolicyViolation):
			countOutcome("change_password", "invalid")
			writeFieldErrors(w, http.StatusBadRequest, "Invalid data", "the provided data is not valid",
				map[string]string{"newPassword": policyDetail(err)})
		case identity.IsNotFound(err):
			countOutcome("change_password", "not_found")
			writeError(w, http.StatusNotFound, "Account not found", "account no longer exists")
		default:
			countOutcome("change_password", "error")
			h.log.Error("users.password.change.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal error", "an unexpected error occurred")
		}
		return
	}

	countOutcome("change_password", "ok")
	w.WriteHeader(http.StatusOK)
}

// ---- helpers ----

// requireIdentity resolves the bearer token into an account ID, or writes a
// 401 and returns false. Expired tokens get a distinct message from invalid
// ones; both are the same status.
func (h *Handler) requireIdentity(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := bearerToken(r)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
		return "", false
	}

	claims, err := h.tokens.Verify(raw, time.Now().UTC())
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, "Token expired", "token has expired, log in again")
			return "", false
		}
		writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
		return "", false
	}
	return claims.Subject, true
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// policyDetail extracts the policy message from a wrapped policy violation.
func policyDetail(err error) string {
	var oe identity.OpError
	if errors.As(err, &oe) && oe.Msg != "" {
		return oe.Msg
	}
	return "new password does not satisfy the password policy"
}
