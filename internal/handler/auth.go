package handler

import (
    "context"  // provides context with cancellation for DB calls
    "errors"
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // timeouts for DB calls and cookie expiry

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/hotel-backoffice/internal/config"     // app configuration
    "github.com/iliyamo/hotel-backoffice/internal/middleware" // session cookie name
    "github.com/iliyamo/hotel-backoffice/internal/model"
    "github.com/iliyamo/hotel-backoffice/internal/repository" // sentinel errors
    "github.com/iliyamo/hotel-backoffice/internal/utils"      // session tokens and password hashing
    "github.com/iliyamo/hotel-backoffice/internal/view"
)

// UserStore is satisfied by *repository.UserRepo.
type UserStore interface {
    GetByEmail(ctx context.Context, email string) (model.User, error)
}

// SessionStore is satisfied by *repository.SessionRepo.
type SessionStore interface {
    Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    Revoke(ctx context.Context, tokenHash string) error
}

// MsgBadCredentials is shown for an unknown email, a wrong password and a
// disabled account alike.
const MsgBadCredentials = "Identifiants invalides."

// AuthHandler bundles dependencies for the sign-in endpoints.
type AuthHandler struct {
    Base
    Cfg      config.Config
    Users    UserStore
    Sessions SessionStore
}

func NewAuthHandler(base Base, cfg config.Config, u UserStore, s SessionStore) *AuthHandler {
    return &AuthHandler{Base: base, Cfg: cfg, Users: u, Sessions: s}
}

// LoginForm renders GET /login.
func (h *AuthHandler) LoginForm(c echo.Context) error {
    return render(c, "login", h.page(c, "Connexion", "", view.LoginData{}))
}

type loginReq struct {
    Email    string `form:"email" validate:"required,email" label:"e-mail"`
    Password string `form:"password" validate:"required" label:"mot de passe"`
}

// Login verifies the credentials, stores a new session and sets the
// session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    _ = c.Bind(&req)
    email := strings.ToLower(strings.TrimSpace(req.Email))
    password := req.Password

    fail := func(msg string) error {
        p := h.page(c, "Connexion", "", view.LoginData{Email: email})
        p.Error = msg
        return c.Render(http.StatusUnauthorized, "login", p)
    }
    req.Email = email
    if err := c.Validate(&req); err != nil {
        return fail(MsgBadCredentials)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, email)
    if err != nil {
        if !errors.Is(err, repository.ErrNotFound) {
            c.Logger().Errorf("login lookup failed: %v", err)
        }
        return fail(MsgBadCredentials)
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
        return fail(MsgBadCredentials)
    }

    sid, err := utils.NewSessionID()
    if err != nil {
        return fail(msgLoginUnavailable)
    }
    ttl := time.Duration(h.Cfg.SessionTTLMin) * time.Minute
    tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, utils.SessionClaims{UserID: u.ID, Role: u.Role, SessionID: sid}, ttl)
    if err != nil {
        return fail(msgLoginUnavailable)
    }
    if err := h.Sessions.Store(ctx, u.ID, utils.HashSessionID(sid), tok.Exp); err != nil {
        c.Logger().Errorf("store session for user %d: %v", u.ID, err)
        return fail(msgLoginUnavailable)
    }

    c.SetCookie(&http.Cookie{
        Name:     middleware.SessionCookie,
        Value:    tok.Token,
        Path:     "/",
        Expires:  tok.Exp,
        HttpOnly: true,
        Secure:   h.Cfg.Env == "prod",
        SameSite: http.SameSiteLaxMode,
    })
    return c.Redirect(http.StatusSeeOther, "/admin")
}

const msgLoginUnavailable = "Connexion impossible pour le moment, veuillez réessayer."

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
    if hash, ok := c.Get("session_hash").(string); ok && hash != "" {
        if err := h.Sessions.Revoke(c.Request().Context(), hash); err != nil {
            c.Logger().Warnf("revoke session: %v", err)
        }
    }
    c.SetCookie(&http.Cookie{
        Name:     middleware.SessionCookie,
        Value:    "",
        Path:     "/",
        MaxAge:   -1,
        HttpOnly: true,
    })
    return c.Redirect(http.StatusSeeOther, "/login")
}
