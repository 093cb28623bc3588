package operations

import (
	"context"

	"github.com/brasa-analytics/brasa/internal/filters"
)

// Repository exposes the operational aggregate queries the service relies on.
type Repository interface {
	Metrics(ctx context.Context, clause filters.Clause) (MetricsRow, error)
	ByHour(ctx context.Context, clause filters.Clause) ([]HourRow, error)
	Cancellations(ctx context.Context, clause filters.Clause) (CancellationRow, error)
}

// Service maps operational aggregates to API responses.
type Service struct {
	repo Repository
}

// NewService wires a Repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetMetrics returns the operational summary. Cancelled orders are kept in
// scope and, absent any selection, the window defaults to the trailing 30
// days.
func (s *Service) GetMetrics(ctx context.Context, set filters.Set) (Metrics, error) {
	clause, err := filters.Compile(set, filters.IncludingCancelled)
	if err != nil {
		return Metrics{}, err
	}
	row, err := s.repo.Metrics(ctx, clause)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{
		TempoMedioProducao: orZero(row.TempoProducao),
		TempoMedioEntrega:  orZero(row.TempoEntrega),
		TaxaCancelamento:   orZero(row.TaxaCancelamento),
		TotalCancelamentos: int(row.TotalCancelamentos),
		PedidosPorHora:     orZero(row.PedidosPorHora),
		EficienciaGeral:    orZero(row.EficienciaGeral),
	}, nil
}

// GetByHour returns per-hour production and delivery times. This view rides
// the default policy: cancelled orders are excluded from the timing averages
// but still counted in the cancelamentos column upstream of the filter.
func (s *Service) GetByHour(ctx context.Context, set filters.Set) ([]HourMetrics, error) {
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ByHour(ctx, clause)
	if err != nil {
		return nil, err
	}
	out := make([]HourMetrics, 0, len(rows))
	for _, row := range rows {
		out = append(out, HourMetrics{
			Hora:               row.Hora,
			TempoMedioProducao: truncInt(row.TempoProducao),
			TempoMedioEntrega:  truncInt(row.TempoEntrega),
			TotalPedidos:       int(row.TotalPedidos),
			Cancelamentos:      int(row.Cancelamentos),
		})
	}
	return out, nil
}

// GetCancellations returns the cancellation summary and breakdowns.
func (s *Service) GetCancellations(ctx context.Context, set filters.Set) (CancellationMetrics, error) {
	clause, err := filters.Compile(set, filters.IncludingCancelled)
	if err != nil {
		return CancellationMetrics{}, err
	}
	row, err := s.repo.Cancellations(ctx, clause)
	if err != nil {
		return CancellationMetrics{}, err
	}
	result := CancellationMetrics{
		TotalPedidos:           int(row.TotalPedidos),
		TotalCancelamentos:     int(row.TotalCancelamentos),
		TaxaCancelamentoGeral:  orZero(row.TaxaGeral),
		CancelamentosPorMotivo: row.PorMotivo,
		CancelamentosPorHora:   row.PorHora,
	}
	if result.CancelamentosPorMotivo == nil {
		result.CancelamentosPorMotivo = []CancelReason{}
	}
	if result.CancelamentosPorHora == nil {
		result.CancelamentosPorHora = []CancelHour{}
	}
	return result, nil
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func truncInt(v *float64) int {
	if v == nil {
		return 0
	}
	return int(*v)
}
