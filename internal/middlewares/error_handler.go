package middlewares

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	APIVersion string        `json:"apiVersion"`
	Error      errorResponse `json:"error"`
}

// NewErrorHandler maps unhandled errors to the JSON envelope. Internal error
// detail is echoed only in debug mode; production callers get a generic
// message.
func NewErrorHandler(debug bool) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}
		if code >= fiber.StatusInternalServerError {
			slog.Error("unhandled error", "path", ctx.Path(), "code", code, "error", err)
			if debug {
				message = err.Error()
			} else {
				message = "Internal server error"
			}
		}
		return ctx.Status(code).JSON(errorEnvelope{
			APIVersion: "1.0",
			Error:      errorResponse{Code: code, Message: message},
		})
	}
}
