package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/line-monitor/internal/queue"
	"github.com/iliyamo/line-monitor/internal/repository"
	"github.com/iliyamo/line-monitor/internal/testutil"
)

type failingPublisher struct{ calls int }

func (p *failingPublisher) PublishReportEvent(context.Context, queue.ReportEvent) error {
	p.calls++
	return errors.New("broker unreachable")
}

func TestReportCreateSurvivesPublishFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	pub := &failingPublisher{}
	h := NewReportHandler(repository.NewReportRepo(testutil.OpenDB(t)), pub, zap.New(core))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/wastewater-reports",
		strings.NewReader(`{"report_date":"2025-06-27","vendor":"Acme","items":[{"item_name":"pH","value":7}]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if pub.calls != 1 {
		t.Errorf("publish calls = %d, want 1", pub.calls)
	}

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(warns) != 1 {
		t.Fatalf("warn entries = %d, want exactly 1: %v", len(warns), warns)
	}
	fields := warns[0].ContextMap()
	if fields["action"] != queue.ReportCreated || fields["report_id"] == nil || fields["error"] == nil {
		t.Errorf("warn fields = %v", fields)
	}
}
