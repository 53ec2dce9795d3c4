package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/incidentops/incident-management/internal/transport"
	"github.com/incidentops/incident-management/pkg/logger"
)

// SessionCookieName is the cookie carrying the signed session value.
const SessionCookieName = "ims_session"

// LoginPath is where unauthenticated browser requests get redirected.
const LoginPath = "/auth/login"

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (string, *User, error)
	Register(dto RegisterDTO) (*User, error)
	ValidateCookie(value string) (*User, error)
	Logout(value string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cookie, user, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "username", dto.Username, "error", err)

		switch err {
		case ErrInvalidCredentials:
			h.WriteError(w, http.StatusUnauthorized, "invalid username or password")
		case ErrUserInactive:
			h.WriteError(w, http.StatusForbidden, "user account is inactive")
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	maxAge := int((24 * time.Hour).Seconds())
	if dto.Remember {
		maxAge = int((30 * 24 * time.Hour).Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    cookie,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.WriteJSON(w, http.StatusOK, user)
}

// LoginPage is the target of the unauthenticated browser redirect.
// There is no HTML frontend, so it tells the client how to sign in.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "authentication required",
		"login":   "POST " + LoginPath + " with username and password",
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Service.Register(dto)
	if err != nil {
		h.Logger.Error("registration failed", "username", dto.Username, "error", err)

		switch err {
		case ErrUsernameTaken:
			h.WriteError(w, http.StatusConflict, "Username already exists. Please choose a different username.")
		case ErrEmailTaken:
			h.WriteError(w, http.StatusConflict, "Email already registered. Please use a different email or login.")
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if value := h.sessionValue(r); value != "" {
		if err := h.Service.Logout(value); err != nil {
			h.Logger.Warn("logout: failed to revoke session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "You have been logged out."})
}

// AuthMiddleware resolves the session to a user and stores it in the
// request context. Browser clients get redirected to the login page,
// API clients get a plain 401.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value := h.sessionValue(r)
		if value == "" {
			h.reject(w, r, "authentication required")
			return
		}

		user, err := h.Service.ValidateCookie(value)
		if err != nil {
			h.Logger.Warn("session validation failed", "error", err)
			h.reject(w, r, "session is invalid or expired")
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		ctx = logger.With(ctx, "user_id", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionValue reads the session from the cookie, falling back to a
// bearer token so non-browser clients can authenticate the same way.
func (h *Handler) sessionValue(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return h.ExtractTokenFromHeader(r)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, message string) {
	if wantsHTML(r) {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}
	h.WriteError(w, http.StatusUnauthorized, message)
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}
