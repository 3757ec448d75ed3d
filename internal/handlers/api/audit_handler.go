package api

import (
	"fmt"
	"time"

	"github.com/edustack/campusaudit/internal/audit"
	"github.com/edustack/campusaudit/internal/middlewares"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuditHandler struct {
	queryService *audit.QueryService
}

func NewAuditHandler(queryService *audit.QueryService) *AuditHandler {
	return &AuditHandler{queryService: queryService}
}

func (h *AuditHandler) GetEvents(ctx *fiber.Ctx) error {
	filter, err := filterFromQuery(ctx)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	page, err := h.queryService.List(ctx.Context(), filter, ctx.QueryInt("page"), ctx.QueryInt("limit"))
	if err != nil {
		return err
	}
	return ctx.JSON(NewDataResponse(page))
}

func (h *AuditHandler) GetSummary(ctx *fiber.Ctx) error {
	stats, err := h.queryService.Summary(ctx.Context(), ctx.QueryInt("days"))
	if err != nil {
		return err
	}
	return ctx.JSON(NewDataResponse(stats))
}

func (h *AuditHandler) GetUserHistory(ctx *fiber.Ctx) error {
	history, err := h.queryService.UserHistory(
		ctx.Context(),
		ctx.Params("userId"),
		ctx.QueryInt("days"),
		ctx.QueryInt("limit"),
	)
	if err == audit.ErrUserIDRequired {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}
	return ctx.JSON(NewDataResponse(history))
}

type cleanupRequest struct {
	RetentionDays int `json:"retentionDays"`
}

type cleanupResponse struct {
	DeletedRows int64 `json:"deletedRows"`
}

func (h *AuditHandler) PostCleanup(ctx *fiber.Ctx) error {
	var req cleanupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	deleted, err := h.queryService.Cleanup(ctx.Context(), req.RetentionDays, actor(ctx), audit.RequestInfoFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(NewDataResponse(cleanupResponse{DeletedRows: deleted}))
}

func (h *AuditHandler) GetExport(ctx *fiber.Ctx) error {
	filter, err := filterFromQuery(ctx)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	data, _, err := h.queryService.ExportCSV(ctx.Context(), filter, actor(ctx), audit.RequestInfoFromCtx(ctx))
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("audit-export-%s.csv", uuid.NewString())
	ctx.Set(fiber.HeaderContentType, "text/csv")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Send(data)
}

func filterFromQuery(ctx *fiber.Ctx) (audit.EventFilter, error) {
	filter := audit.EventFilter{
		EventType: ctx.Query("eventType"),
		UserID:    ctx.Query("userId"),
		SourceIP:  ctx.Query("sourceIp"),
		Search:    ctx.Query("search"),
	}
	if id := ctx.QueryInt("id"); id > 0 {
		filter.ID = uint64(id)
	}
	if raw := ctx.Query("succeeded"); raw != "" {
		succeeded := ctx.QueryBool("succeeded")
		filter.Succeeded = &succeeded
	}
	if raw := ctx.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid from timestamp: %s", raw)
		}
		filter.From = &from
	}
	if raw := ctx.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid to timestamp: %s", raw)
		}
		filter.To = &to
	}
	if raw := ctx.Query("minRisk"); raw != "" {
		minRisk := ctx.QueryInt("minRisk")
		filter.MinRisk = &minRisk
	}
	return filter, nil
}

func actor(ctx *fiber.Ctx) string {
	if claims := middlewares.ClaimsFromCtx(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}
