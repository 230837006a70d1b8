package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/line-monitor/internal/model"
	"github.com/iliyamo/line-monitor/internal/repository"
)

type SampleHandler struct {
	Samples *repository.SampleRepo
	Log     *zap.Logger
}

func NewSampleHandler(s *repository.SampleRepo, log *zap.Logger) *SampleHandler {
	return &SampleHandler{Samples: s, Log: log}
}

type sampleListResp struct {
	Data       []model.Sample   `json:"data"`
	Pagination model.Pagination `json:"pagination"`
}

// List handles GET /samples?page=&per_page=&sort_by=&order=&line_name=.
// Unknown sort keys and malformed numbers fall back to defaults.
func (h *SampleHandler) List(c echo.Context) error {
	q := repository.SampleQuery{
		Page:    queryInt(c, "page"),
		PerPage: queryInt(c, "per_page"),
		SortBy:  c.QueryParam("sort_by"),
		Order:   c.QueryParam("order"),
		Filter: repository.SampleFilter{
			LineName:    c.QueryParam("line_name"),
			ProductName: c.QueryParam("product_name"),
			Operator:    c.QueryParam("operator"),
		},
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	items, page, err := h.Samples.List(ctx, q)
	if err != nil {
		return internalError(c, h.Log, "list samples failed", err)
	}
	return c.JSON(http.StatusOK, sampleListResp{Data: items, Pagination: page})
}

type createSampleReq struct {
	LineName    string   `json:"line_name"`
	ProductName *string  `json:"product_name"`
	Timestamp   string   `json:"timestamp"`
	MetricA     *float64 `json:"metric_a"`
	MetricB     *float64 `json:"metric_b"`
	Operator    *string  `json:"operator"`
}

// Create handles POST /samples.
func (h *SampleHandler) Create(c echo.Context) error {
	var req createSampleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	s := model.Sample{
		LineName:    strings.TrimSpace(req.LineName),
		ProductName: req.ProductName,
		MetricA:     req.MetricA,
		MetricB:     req.MetricB,
		Operator:    req.Operator,
	}

	fe := fieldErrors{}
	fe.required("line_name", s.LineName)
	fe.maxLen("line_name", s.LineName, model.MaxLineNameLen)
	fe.maxLenPtr("product_name", s.ProductName, model.MaxProductNameLen)
	fe.maxLenPtr("operator", s.Operator, model.MaxOperatorLen)
	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			fe["timestamp"] = "must be an RFC3339 timestamp"
		}
		s.Timestamp = ts
	}
	if len(fe) > 0 {
		return validationFailed(c, fe)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Samples.Create(ctx, &s); err != nil {
		return internalError(c, h.Log, "create sample failed", err)
	}
	return c.JSON(http.StatusCreated, s)
}

type batchDeleteReq struct {
	IDs []uint64 `json:"ids"`
}

// BatchDelete handles DELETE /samples with body {"ids": [...]}.  It answers
// 404 only when none of the ids matched.
func (h *SampleHandler) BatchDelete(c echo.Context) error {
	var req batchDeleteReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if len(req.IDs) == 0 {
		return validationFailed(c, fieldErrors{"ids": "must contain at least one id"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	n, err := h.Samples.DeleteByIDs(ctx, req.IDs)
	if err != nil {
		if errors.Is(err, repository.ErrSampleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found", "message": "no samples were deleted"})
		}
		return internalError(c, h.Log, "delete samples failed", err)
	}
	h.Log.Info("samples deleted", zap.Int64("count", n))
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("deleted %d samples", n),
		"deleted": n,
	})
}
