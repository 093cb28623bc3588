package customers

import (
	"context"
	"time"

	"github.com/brasa-analytics/brasa/internal/filters"
)

// DefaultTopLimit is the ranking size when the request carries no limit.
const DefaultTopLimit = 10

// Repository exposes the customer aggregate queries the service relies on.
type Repository interface {
	Metrics(ctx context.Context, clause filters.Clause) (MetricsRow, error)
	TopCustomers(ctx context.Context, clause filters.Clause, limit int) ([]TopCustomerRow, error)
	Segmentation(ctx context.Context, clause filters.Clause) ([]SegmentRow, error)
}

// Service maps customer aggregates to API responses. The clock seam keeps
// the days-since-last-purchase figure testable.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a Repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// GetMetrics returns the recency-bucket summary.
func (s *Service) GetMetrics(ctx context.Context, set filters.Set) (Metrics, error) {
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return Metrics{}, err
	}
	row, err := s.repo.Metrics(ctx, clause)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{
		TotalClientes:    int(row.TotalClientes),
		ClientesAtivos7d: int(row.ClientesAtivos7d),
		ClientesAtivos15: int(row.ClientesAtivos15),
		ClientesAtivos30: int(row.ClientesAtivos30),
		ClientesAtivos90: int(row.ClientesAtivos90),
		ClientesInativos: int(row.ClientesInativos),
		ClientesAtivos:   int(row.ClientesAtivos),
		TicketMedioGeral: orZero(row.TicketMedioGeral),
		FrequenciaMedia:  orZero(row.FrequenciaMedia),
	}, nil
}

// GetTopCustomers returns the spending ranking with days since the last
// purchase computed against the service clock.
func (s *Service) GetTopCustomers(ctx context.Context, set filters.Set, limit int) ([]TopCustomer, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.TopCustomers(ctx, clause, limit)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]TopCustomer, 0, len(rows))
	for _, row := range rows {
		name := orEmpty(row.Name)
		if name == "" {
			name = "Cliente Não Identificado"
		}
		days := int(now.Sub(row.UltimaCompra).Hours() / 24)
		if days < 0 {
			days = 0
		}
		out = append(out, TopCustomer{
			ID:                    row.ID,
			Name:                  name,
			Email:                 orEmpty(row.Email),
			Phone:                 orEmpty(row.Phone),
			TotalPedidos:          int(row.TotalPedidos),
			TotalGasto:            orZero(row.TotalGasto),
			TicketMedio:           orZero(row.TicketMedio),
			UltimaCompra:          row.UltimaCompra,
			LojasFrequentadas:     int(row.LojasFrequentadas),
			DiasDesdeUltimaCompra: days,
		})
	}
	return out, nil
}

// GetSegmentation returns the frequency/recency grid.
func (s *Service) GetSegmentation(ctx context.Context, set filters.Set) ([]Segment, error) {
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Segmentation(ctx, clause)
	if err != nil {
		return nil, err
	}
	out := make([]Segment, 0, len(rows))
	for _, row := range rows {
		out = append(out, Segment{
			Segmento:           row.Segmento,
			StatusAtivo:        row.StatusAtivo,
			QuantidadeClientes: int(row.QuantidadeClientes),
			MediaPedidos:       orZero(row.MediaPedidos),
			MediaGasto:         orZero(row.MediaGasto),
		})
	}
	return out, nil
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func orEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
