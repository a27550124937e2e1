package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ptavares/socialspaces/internal/audit"
	"github.com/ptavares/socialspaces/internal/common"
	"github.com/ptavares/socialspaces/internal/render"
	"github.com/ptavares/socialspaces/params"
	"github.com/spf13/cast"
)

type AuditHandler struct {
	auditService *audit.Service
}

func NewAuditHandler(auditService *audit.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GetAllLogs returns every completed request record, most recent first.
func (h *AuditHandler) GetAllLogs(ctx *fiber.Ctx) error {
	logs, err := h.auditService.AllLogs(ctx.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch audit logs")
	}
	return ctx.JSON(logs)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(value string) (*time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}
	return nil, audit.ErrInvalidDate
}

// GetLogs serves the filtered, paginated listing. Limit must coerce to a
// number and is clamped to [1, 1000]; offset is clamped to a minimum of 0;
// the userId filter is escaped before it is matched or echoed back.
func (h *AuditHandler) GetLogs(ctx *fiber.Ctx) error {
	limit, err := cast.ToIntE(ctx.Query("limit", cast.ToString(params.DefaultLogPageSize)))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid limit value")
	}
	if limit < params.MinLogPageSize {
		limit = params.MinLogPageSize
	}
	if limit > params.MaxLogPageSize {
		limit = params.MaxLogPageSize
	}

	offset := cast.ToInt(ctx.Query("offset"))
	if offset < 0 {
		offset = 0
	}

	opts := audit.ListOptions{
		Limit:  limit,
		Offset: offset,
		UserID: common.EscapeSpecialCharacters(ctx.Query("userId")),
		Method: ctx.Query("method"),
	}
	if value := ctx.Query("startDate"); value != "" {
		opts.StartDate, err = parseDate(value)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid parameters provided")
		}
	}
	if value := ctx.Query("endDate"); value != "" {
		opts.EndDate, err = parseDate(value)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid parameters provided")
		}
	}

	page, err := h.auditService.ListLogs(ctx.Context(), opts)
	if err == audit.ErrStartAfterEnd {
		return fiber.NewError(fiber.StatusBadRequest, "Start date cannot be later than end date")
	} else if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch audit logs")
	}
	return ctx.JSON(page)
}

// GetLogsSummary serves the aggregate statistics.
func (h *AuditHandler) GetLogsSummary(ctx *fiber.Ctx) error {
	summary, err := h.auditService.Summary(ctx.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to get logs summary")
	}
	return ctx.JSON(summary)
}

type auditViewRow struct {
	ID      uint64
	Method  string
	Path    string
	Status  int
	IsError bool
	User    string
	Time    string
}

// GetView renders the operator HTML view of the most recent records.
func (h *AuditHandler) GetView(ctx *fiber.Ctx) error {
	page, err := h.auditService.ListLogs(ctx.Context(), audit.ListOptions{
		Limit: params.AuditViewPageSize,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch audit logs")
	}

	rows := make([]auditViewRow, 0, len(page.Logs))
	for _, log := range page.Logs {
		row := auditViewRow{
			ID:   log.ID,
			Time: log.Time.Format(time.RFC3339),
		}
		if log.Method != nil {
			row.Method = *log.Method
		}
		if log.Path != nil {
			row.Path = *log.Path
		}
		if log.Status != nil {
			row.Status = *log.Status
			row.IsError = *log.Status >= 400
		}
		if log.User != nil {
			row.User = *log.User
		}
		rows = append(rows, row)
	}

	body, err := render.RenderHTML("audit-logs", fiber.Map{
		"logs":  rows,
		"total": page.Total,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to render audit logs")
	}
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return ctx.SendString(body)
}
