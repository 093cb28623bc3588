package operations

import (
	"context"
	"strings"
	"testing"

	"github.com/brasa-analytics/brasa/internal/filters"
)

func f64(v float64) *float64 { return &v }

type stubRepo struct {
	metrics       MetricsRow
	hours         []HourRow
	cancellation  CancellationRow
	metricsClause filters.Clause
	hoursClause   filters.Clause
	metricsCalls  int
}

func (s *stubRepo) Metrics(ctx context.Context, clause filters.Clause) (MetricsRow, error) {
	s.metricsCalls++
	s.metricsClause = clause
	return s.metrics, nil
}

func (s *stubRepo) ByHour(ctx context.Context, clause filters.Clause) ([]HourRow, error) {
	s.hoursClause = clause
	return s.hours, nil
}

func (s *stubRepo) Cancellations(ctx context.Context, clause filters.Clause) (CancellationRow, error) {
	return s.cancellation, nil
}

func TestGetMetricsKeepsCancelledInScope(t *testing.T) {
	repo := &stubRepo{metrics: MetricsRow{
		TempoProducao:      f64(1080),
		TempoEntrega:       f64(1500),
		TaxaCancelamento:   f64(0.04),
		TotalCancelamentos: 18,
		PedidosPorHora:     f64(22.5),
		EficienciaGeral:    f64(0.9),
	}}
	svc := NewService(repo)

	metrics, err := svc.GetMetrics(context.Background(), filters.Set{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(repo.metricsClause.SQL, "NOT IN") {
		t.Fatalf("cancelled orders must stay in scope, got %q", repo.metricsClause.SQL)
	}
	// No selection still scopes to the default trailing window.
	if !strings.Contains(repo.metricsClause.SQL, "s.created_at >=") {
		t.Fatalf("expected default window, got %q", repo.metricsClause.SQL)
	}
	if metrics.TaxaCancelamento != 0.04 || metrics.TotalCancelamentos != 18 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
}

func TestGetMetricsRejectsInvalidPeriod(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	if _, err := svc.GetMetrics(context.Background(), filters.Set{Period: "month"}); err == nil {
		t.Fatal("expected error for invalid period")
	}
	if repo.metricsCalls != 0 {
		t.Fatalf("repository must not be queried, got %d calls", repo.metricsCalls)
	}
}

func TestGetByHourUsesDefaultPolicy(t *testing.T) {
	repo := &stubRepo{hours: []HourRow{
		{Hora: 12, TempoProducao: f64(940.7), TempoEntrega: f64(1311.2), TotalPedidos: 48, Cancelamentos: 2},
		{Hora: 13, TotalPedidos: 30},
	}}
	svc := NewService(repo)

	data, err := svc.GetByHour(context.Background(), filters.Set{Period: "7d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(repo.hoursClause.SQL, "NOT IN ('CANCELADO', 'CANCELLED')") {
		t.Fatalf("hourly view excludes cancelled orders, got %q", repo.hoursClause.SQL)
	}
	if data[0].TempoMedioProducao != 940 || data[0].TempoMedioEntrega != 1311 {
		t.Fatalf("expected truncated averages, got %+v", data[0])
	}
	if data[1].TempoMedioProducao != 0 {
		t.Fatalf("expected null average coerced to zero, got %+v", data[1])
	}
}

func TestGetCancellationsEmptyBreakdowns(t *testing.T) {
	repo := &stubRepo{cancellation: CancellationRow{
		TotalPedidos:       100,
		TotalCancelamentos: 0,
	}}
	svc := NewService(repo)

	metrics, err := svc.GetCancellations(context.Background(), filters.Set{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.CancelamentosPorMotivo == nil || metrics.CancelamentosPorHora == nil {
		t.Fatal("breakdowns must serialise as empty arrays, not null")
	}
	if metrics.TaxaCancelamentoGeral != 0 {
		t.Fatalf("expected zero rate, got %v", metrics.TaxaCancelamentoGeral)
	}
}

func TestGetCancellationsBreakdowns(t *testing.T) {
	repo := &stubRepo{cancellation: CancellationRow{
		TotalPedidos:       250,
		TotalCancelamentos: 10,
		TaxaGeral:          f64(0.04),
		PorMotivo:          []CancelReason{{Motivo: "Sem motivo informado", Quantidade: 6}},
		PorHora:            []CancelHour{{Hora: 22, TotalHora: 40, CancelamentosHora: 4, TaxaCancelamento: 0.1}},
	}}
	svc := NewService(repo)

	metrics, err := svc.GetCancellations(context.Background(), filters.Set{StoreIDs: "1,2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(metrics.CancelamentosPorMotivo) != 1 || metrics.CancelamentosPorMotivo[0].Quantidade != 6 {
		t.Fatalf("unexpected reasons %+v", metrics.CancelamentosPorMotivo)
	}
	if metrics.CancelamentosPorHora[0].TaxaCancelamento != 0.1 {
		t.Fatalf("unexpected hourly breakdown %+v", metrics.CancelamentosPorHora)
	}
}
