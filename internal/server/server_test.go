package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/buyerboard/finance-engine/internal/config"
	"github.com/buyerboard/finance-engine/internal/engine"
	"github.com/buyerboard/finance-engine/pkg/normalize"
	"github.com/buyerboard/finance-engine/pkg/projection"
	"go.uber.org/zap"
)

func testHandler() http.Handler {
	conf := &config.Configuration{
		CommissionRules: []config.CommissionRule{{MediaBuyer: "Alice", Rate: 0.12}},
	}
	return NewHandler(zap.NewNop(), conf, 0, "test")
}

func postReport(t *testing.T, handler http.Handler, in engine.Input) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("failed to marshal input: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/report", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleReportSuccess(t *testing.T) {
	handler := testHandler()

	rr := postReport(t, handler, engine.Input{
		Records: []normalize.RawRecord{
			{Date: "2026-09-01", MediaBuyer: "Alice", Network: "NetA", Offer: "O1", TotalRevenue: "$1,000", AdSpend: "$400"},
		},
		Snapshot: projection.Snapshot{
			CashAccounts: []projection.CashAccount{{Name: "Operating", Available: 10000}},
		},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp reportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Report.Dailies) != 1 {
		t.Errorf("expected 1 daily aggregate, got %d", len(resp.Report.Dailies))
	}
	if len(resp.Report.Projection) != 30 {
		t.Errorf("expected 30 projection days, got %d", len(resp.Report.Projection))
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}
}

func TestHandleReportRejectsInvalidBody(t *testing.T) {
	handler := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestHandleReportRejectsNilRecords(t *testing.T) {
	handler := testHandler()

	rr := postReport(t, handler, engine.Input{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for missing records, got %d", rr.Code)
	}
}

func TestHandleProjection(t *testing.T) {
	handler := testHandler()

	body, err := json.Marshal(projectionRequest{
		Snapshot: projection.Snapshot{
			CashAccounts: []projection.CashAccount{{Name: "Operating", Available: 20000}},
			Invoices: []projection.Invoice{
				{Network: "NetA", Amount: 5000, DueDate: "2026-09-03"},
			},
		},
		Now:         time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		HorizonDays: 10,
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/projection", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp projectionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Projection) != 10 {
		t.Fatalf("expected 10 projection days, got %d", len(resp.Projection))
	}
	// The invoice lands on day 3 and lifts the running balance.
	if got := resp.Projection[2].Balance; got != 25000 {
		t.Errorf("balance after invoice = %v, expected 25000", got)
	}
}

func TestHandleProjectionRejectsInvalidBody(t *testing.T) {
	handler := testHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/projection", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleReportMethodNotAllowed(t *testing.T) {
	handler := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	handler := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "test" {
		t.Errorf("version = %q, expected test", resp["version"])
	}
}

func TestHandleConfigExport(t *testing.T) {
	handler := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/config/export", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Alice") {
		t.Errorf("exported config missing commission rule: %s", rr.Body.String())
	}
}
