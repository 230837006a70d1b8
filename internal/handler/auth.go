package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/line-monitor/internal/config"
	"github.com/iliyamo/line-monitor/internal/middleware"
	"github.com/iliyamo/line-monitor/internal/repository"
	"github.com/iliyamo/line-monitor/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Log   *zap.Logger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account.  Duplicate usernames and emails are rejected
// with 400 before anything is written.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	fe := fieldErrors{}
	fe.required("username", req.Username)
	fe.maxLen("username", req.Username, 80)
	fe.required("email", req.Email)
	fe.maxLen("email", req.Email, 120)
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		fe["email"] = "must be an email address"
	}
	fe.required("password", req.Password)
	if len(fe) > 0 {
		return validationFailed(c, fe)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.Cfg.BcryptCost); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return badRequest(c, "username already exists")
		case errors.Is(err, repository.ErrEmailExists):
			return badRequest(c, "email already exists")
		}
		return internalError(c, h.Log, "create user failed", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "user registered"})
}

// Login verifies credentials and returns an access token.  Unknown users
// and wrong passwords get the same 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	fe := fieldErrors{}
	fe.required("username", req.Username)
	fe.required("password", req.Password)
	if len(fe) > 0 {
		return validationFailed(c, fe)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return internalError(c, h.Log, "query failed", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, utils.Identity{UserID: u.ID, Username: u.Username}, h.Cfg.AccessTTLMin)
	if err != nil {
		return internalError(c, h.Log, "issue access failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": access.Token})
}

// Me returns the identity behind the bearer token.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return internalError(c, h.Log, "load user failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": u.ID, "username": u.Username, "email": u.Email})
}
