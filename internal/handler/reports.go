package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/line-monitor/internal/model"
	"github.com/iliyamo/line-monitor/internal/queue"
	"github.com/iliyamo/line-monitor/internal/repository"
	"github.com/iliyamo/line-monitor/internal/service"
)

// Column limits of the report tables.
const (
	maxVendorLen   = 100
	maxStatusLen   = 50
	maxItemNameLen = 100
	maxUnitLen     = 20
	maxStandardLen = 100
)

type ReportHandler struct {
	Reports *repository.ReportRepo
	Events  service.EventPublisher
	Log     *zap.Logger
}

func NewReportHandler(r *repository.ReportRepo, ev service.EventPublisher, log *zap.Logger) *ReportHandler {
	return &ReportHandler{Reports: r, Events: ev, Log: log}
}

type reportItemReq struct {
	ItemName    string   `json:"item_name"`
	Value       *float64 `json:"value"`
	Unit        *string  `json:"unit"`
	Standard    *string  `json:"standard"`
	IsCompliant *bool    `json:"is_compliant"`
}

type reportReq struct {
	ReportDate string          `json:"report_date"`
	Vendor     string          `json:"vendor"`
	Status     string          `json:"status"`
	Items      []reportItemReq `json:"items"`
}

// toModel validates the payload and builds the aggregate.  All problems are
// reported at once.
func (req reportReq) toModel() (*model.WastewaterReport, fieldErrors) {
	fe := fieldErrors{}
	rep := &model.WastewaterReport{
		Vendor: strings.TrimSpace(req.Vendor),
		Status: strings.TrimSpace(req.Status),
		Items:  make([]model.WastewaterReportItem, 0, len(req.Items)),
	}

	date := strings.TrimSpace(req.ReportDate)
	fe.required("report_date", date)
	if date != "" {
		d, err := time.Parse(model.DateLayout, date)
		if err != nil {
			fe["report_date"] = "must be a date in YYYY-MM-DD format"
		}
		rep.ReportDate = d
	}
	fe.required("vendor", rep.Vendor)
	fe.maxLen("vendor", rep.Vendor, maxVendorLen)
	fe.maxLen("status", rep.Status, maxStatusLen)

	for i, in := range req.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		it := model.WastewaterReportItem{
			ItemName:    strings.TrimSpace(in.ItemName),
			Unit:        in.Unit,
			Standard:    in.Standard,
			IsCompliant: true,
		}
		fe.required(prefix+"item_name", it.ItemName)
		fe.maxLen(prefix+"item_name", it.ItemName, maxItemNameLen)
		fe.maxLenPtr(prefix+"unit", it.Unit, maxUnitLen)
		fe.maxLenPtr(prefix+"standard", it.Standard, maxStandardLen)
		if in.Value == nil {
			fe[prefix+"value"] = "is required"
		} else {
			it.Value = *in.Value
		}
		if in.IsCompliant != nil {
			it.IsCompliant = *in.IsCompliant
		}
		rep.Items = append(rep.Items, it)
	}
	return rep, fe
}

// List handles GET /wastewater-reports?status=&search=.
func (h *ReportHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	reports, err := h.Reports.List(ctx, repository.ReportFilter{
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
	})
	if err != nil {
		return internalError(c, h.Log, "list reports failed", err)
	}
	return c.JSON(http.StatusOK, reports)
}

// Get handles GET /wastewater-reports/:id.
func (h *ReportHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	rep, err := h.Reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return notFound(c, "report not found")
		}
		return internalError(c, h.Log, "get report failed", err)
	}
	return c.JSON(http.StatusOK, rep)
}

// Create handles POST /wastewater-reports.
func (h *ReportHandler) Create(c echo.Context) error {
	var req reportReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	rep, fe := req.toModel()
	if len(fe) > 0 {
		return validationFailed(c, fe)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Reports.Create(ctx, rep); err != nil {
		return internalError(c, h.Log, "create report failed", err)
	}
	h.publish(ctx, queue.ReportCreated, rep)
	return c.JSON(http.StatusCreated, rep)
}

// Update handles PUT /wastewater-reports/:id.  The body replaces the report
// and its whole item list.
func (h *ReportHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var req reportReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	rep, fe := req.toModel()
	if len(fe) > 0 {
		return validationFailed(c, fe)
	}
	rep.ID = id

	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Reports.Update(ctx, rep); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return notFound(c, "report not found")
		}
		return internalError(c, h.Log, "update report failed", err)
	}
	h.publish(ctx, queue.ReportUpdated, rep)
	return c.JSON(http.StatusOK, rep)
}

// Delete handles DELETE /wastewater-reports/:id.
func (h *ReportHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	rep, err := h.Reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return notFound(c, "report not found")
		}
		return internalError(c, h.Log, "get report failed", err)
	}
	if err := h.Reports.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return notFound(c, "report not found")
		}
		return internalError(c, h.Log, "delete report failed", err)
	}
	h.publish(ctx, queue.ReportDeleted, rep)
	return c.NoContent(http.StatusNoContent)
}

// publish is best effort; the change is already committed.
func (h *ReportHandler) publish(ctx context.Context, action string, rep *model.WastewaterReport) {
	ev := queue.NewReportEvent(action, rep.ID, rep.Vendor, rep.Status, len(rep.Items))
	if err := h.Events.PublishReportEvent(ctx, ev); err != nil {
		h.Log.Warn("report event dropped", zap.String("action", action), zap.Uint64("report_id", rep.ID), zap.Error(err))
	}
}
