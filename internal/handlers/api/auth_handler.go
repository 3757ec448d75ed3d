package api

import (
	"errors"
	"strings"

	"github.com/edustack/campusaudit/internal/audit"
	"github.com/edustack/campusaudit/internal/auth"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *auth.AuthService
	recorder    *audit.Recorder
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
	Username    string `json:"username"`
	Roles       string `json:"roles"`
}

func (h *AuthHandler) PostLogin(ctx *fiber.Ctx) error {
	var req loginRequest
	if err := ctx.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing username or password")
	}
	reqInfo := audit.RequestInfoFromCtx(ctx)

	result, err := h.authService.Login(ctx.Context(), req.Username, req.Password)
	if err != nil {
		h.recorder.RecordLogin(ctx.Context(), audit.LoginRecord{
			Username: req.Username,
			Reason:   err.Error(),
		}, reqInfo)
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrAccountDisabled) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(
				NewErrorResponse(fiber.StatusUnauthorized, "Invalid username or password"),
			)
		}
		return err
	}

	h.recorder.RecordLogin(ctx.Context(), audit.LoginRecord{
		Username:  result.User.Username,
		Roles:     strings.Split(result.User.Roles, ","),
		SessionID: result.SessionID,
		Success:   true,
	}, reqInfo)

	return ctx.JSON(NewDataResponse(loginResponse{
		AccessToken: result.Token,
		ExpiresAt:   result.ExpiresAt.Unix(),
		Username:    result.User.Username,
		Roles:       result.User.Roles,
	}))
}

func NewAuthHandler(authService *auth.AuthService, recorder *audit.Recorder) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		recorder:    recorder,
	}
}
