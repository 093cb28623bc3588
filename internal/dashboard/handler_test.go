package dashboard

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T, repo Repository) chi.Router {
	t.Helper()
	svc, _ := newTestService(t, repo)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, svc).MountRoutes(r)
	return r
}

func TestMetricsEndpoint(t *testing.T) {
	repo := &stubRepo{
		summary: SummaryRow{Pedidos: 200, Faturamento: f64(1000), Clientes: 80},
		totals:  TotalsRow{Pedidos: 160, Faturamento: f64(800)},
	}
	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/metrics?period=30d&store=todas", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var metrics Metrics
	if err := json.Unmarshal(rr.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if metrics.Faturamento != 1000 || metrics.Crescimento.Faturamento != 25.0 {
		t.Fatalf("unexpected payload %+v", metrics)
	}
}

func TestMetricsEndpointRejectsInvalidPeriod(t *testing.T) {
	repo := &stubRepo{}
	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/metrics?period=abc", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if repo.summaryCalls != 0 {
		t.Fatalf("repository must not run on invalid input, got %d calls", repo.summaryCalls)
	}
}

func TestMetricsEndpointRejectsInvalidStore(t *testing.T) {
	router := newTestRouter(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/metrics?store=abc", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestFilterOptionsEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/filter-options", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var opts FilterOptions
	if err := json.Unmarshal(rr.Body.Bytes(), &opts); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(opts.Stores) != 1 || len(opts.Channels) != 1 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestChannelDistributionEndpoint(t *testing.T) {
	repo := &stubRepo{channels: []ChannelRow{
		{Name: "iFood", Type: "D", Pedidos: 30, Receita: f64(750), TicketMedio: f64(25)},
	}}
	router := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/channel-distribution?period=7d", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var slices []ChannelSlice
	if err := json.Unmarshal(rr.Body.Bytes(), &slices); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(slices) != 1 || slices[0].Percentual != 100 {
		t.Fatalf("unexpected payload %+v", slices)
	}
}
