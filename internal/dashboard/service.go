package dashboard

import (
	"context"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/brasa-analytics/brasa/internal/filters"
	"github.com/brasa-analytics/brasa/internal/platform/cache"
)

// defaultComparisonDays fills the comparison window when the caller selected
// neither explicit dates nor a period.
const defaultComparisonDays = 30

// Repository exposes the aggregate queries the service relies on.
type Repository interface {
	MetricsSummary(ctx context.Context, clause filters.Clause) (SummaryRow, error)
	ComparisonTotals(ctx context.Context, clause filters.Clause) (TotalsRow, error)
	RevenueTimeline(ctx context.Context, clause filters.Clause) ([]TimelineRow, error)
	ChannelDistribution(ctx context.Context, clause filters.Clause) ([]ChannelRow, error)
	StorePerformance(ctx context.Context, clause filters.Clause) ([]StoreRow, error)
	SalesByHour(ctx context.Context, clause filters.Clause) ([]HourRow, error)
	PaymentMethods(ctx context.Context, clause filters.Clause) ([]PaymentRow, error)
	CouponPerformance(ctx context.Context, clause filters.Clause) ([]CouponRow, error)
	ListStores(ctx context.Context) ([]StoreOption, error)
	ListChannels(ctx context.Context) ([]ChannelOption, error)
	ListSubBrands(ctx context.Context) ([]SubBrandOption, error)
}

// Service coordinates dashboard query execution with the response cache.
type Service struct {
	repo  Repository
	cache *cache.Store
}

// NewService wires a Repository with the cache helper.
func NewService(repo Repository, store *cache.Store) *Service {
	return &Service{repo: repo, cache: store}
}

func key(endpoint string, set filters.Set) string {
	return strings.Join([]string{"brasa", "dashboard", endpoint, set.CacheToken()}, ":")
}

// GetMetrics resolves the headline metrics card, issuing the current-period
// and previous-period aggregates concurrently. Both clauses are compiled
// before any query runs, so an invalid filter fails without touching the
// database.
func (s *Service) GetMetrics(ctx context.Context, set filters.Set) (Metrics, error) {
	current, err := filters.Compile(set, filters.Default)
	if err != nil {
		return Metrics{}, err
	}
	previous, err := comparisonClause(set)
	if err != nil {
		return Metrics{}, err
	}

	loader := func(ctx context.Context) (any, error) {
		var summary SummaryRow
		var totals TotalsRow
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			row, err := s.repo.MetricsSummary(ctx, current)
			if err != nil {
				return err
			}
			summary = row
			return nil
		})
		g.Go(func() error {
			row, err := s.repo.ComparisonTotals(ctx, previous)
			if err != nil {
				return err
			}
			totals = row
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return buildMetrics(summary, totals), nil
	}

	var metrics Metrics
	if err := s.cache.FetchJSON(ctx, key("metrics", set), &metrics, loader); err != nil {
		return Metrics{}, err
	}
	return metrics, nil
}

// comparisonClause compiles the non-time filters once and appends the
// previous-window predicate. Explicit dates bind absolute timestamps; a
// relative period binds the two day offsets of the half-open window
// [now - 2N days, now - N days).
func comparisonClause(set filters.Set) (filters.Clause, error) {
	b := filters.NewBuilder()
	if err := b.ApplySet(set.WithoutWindow(), filters.Default); err != nil {
		return filters.Clause{}, err
	}
	if set.HasExplicitDates() {
		win, _, err := PreviousWindow(set.StartDate, set.EndDate)
		if err != nil {
			return filters.Clause{}, err
		}
		b.Add("s.created_at >= $%d", win.Start)
		b.Add("s.created_at <= $%d", win.End)
		return b.Where(), nil
	}
	days, err := filters.ParsePeriodDays(set.Period, defaultComparisonDays)
	if err != nil {
		return filters.Clause{}, err
	}
	b.Add("s.created_at >= NOW() - INTERVAL '1 day' * $%d", days*2)
	b.Add("s.created_at < NOW() - INTERVAL '1 day' * $%d", days)
	return b.Where(), nil
}

func buildMetrics(summary SummaryRow, totals TotalsRow) Metrics {
	return Metrics{
		Faturamento:        orZero(summary.Faturamento),
		Pedidos:            int(summary.Pedidos),
		TicketMedio:        orZero(summary.TicketMedio),
		Clientes:           int(summary.Clientes),
		TaxasEntrega:       orZero(summary.TaxasEntrega),
		Descontos:          orZero(summary.Descontos),
		TempoMedioProducao: truncInt(summary.TempoProducao),
		TempoMedioEntrega:  truncInt(summary.TempoEntrega),
		Crescimento: Growth2{
			Faturamento: Growth(orZero(summary.Faturamento), orZero(totals.Faturamento)),
			Pedidos:     Growth(float64(summary.Pedidos), float64(totals.Pedidos)),
		},
	}
}

// GetRevenueTimeline returns the daily revenue series with dd/mm labels.
func (s *Service) GetRevenueTimeline(ctx context.Context, set filters.Set) ([]TimelinePoint, error) {
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	loader := func(ctx context.Context) (any, error) {
		rows, err := s.repo.RevenueTimeline(ctx, clause)
		if err != nil {
			return nil, err
		}
		points := make([]TimelinePoint, 0, len(rows))
		for _, row := range rows {
			points = append(points, TimelinePoint{
				Date:    row.Date.Format("02/01"),
				Value:   orZero(row.Value),
				Pedidos: int(row.Pedidos),
			})
		}
		return points, nil
	}
	var points []TimelinePoint
	if err := s.cache.FetchJSON(ctx, key("revenue-timeline", set), &points, loader); err != nil {
		return nil, err
	}
	return points, nil
}

// GetChannelDistribution returns each channel's share of revenue.
func (s *Service) GetChannelDistribution(ctx context.Context, set filters.Set) ([]ChannelSlice, error) {
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	loader := func(ctx context.Context) (any, error) {
		rows, err := s.repo.ChannelDistribution(ctx, clause)
		if err != nil {
			return nil, err
		}
		var total float64
		for _, row := range rows {
			total += orZero(row.Receita)
		}
		slices := make([]ChannelSlice, 0, len(rows))
		for _, row := range rows {
			receita := orZero(row.Receita)
			share := 0
			if total > 0 {
				share = int(math.Round(receita / total * 100))
			}
			slices = append(slices, ChannelSlice{
				Name:        row.Name,
				Type:        channelTypeLabel(row.Type),
				Pedidos:     int(row.Pedidos),
				Receita:     receita,
				TicketMedio: orZero(row.TicketMedio),
				Percentual:  share,
			})
		}
		return slices, nil
	}
	var slices []ChannelSlice
	if err := s.cache.FetchJSON(ctx, key("channel-distribution", set), &slices, loader); err != nil {
		return nil, err
	}
	return slices, nil
}

func channelTypeLabel(t string) string {
	if t == "P" {
		return "Presencial"
	}
	return "Delivery"
}

// GetStorePerformance returns per-store aggregates ordered by revenue.
func (s *Service) GetStorePerformance(ctx context.Context, set filters.Set) ([]StorePerformance, error) {
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	loader := func(ctx context.Context) (any, error) {
		rows, err := s.repo.StorePerformance(ctx, clause)
		if err != nil {
			return nil, err
		}
		out := make([]StorePerformance, 0, len(rows))
		for _, row := range rows {
			out = append(out, StorePerformance{
				Name:               row.Name,
				City:               orEmpty(row.City),
				State:              orEmpty(row.State),
				Pedidos:            int(row.Pedidos),
				Receita:            orZero(row.Receita),
				TicketMedio:        orZero(row.TicketMedio),
				TempoMedioProducao: truncInt(row.TempoProducao),
			})
		}
		return out, nil
	}
	var out []StorePerformance
	if err := s.cache.FetchJSON(ctx, key("store-performance", set), &out, loader); err != nil {
		return nil, err
	}
	return out, nil
}

var weekdayLabels = [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// GetSalesByHour returns the weekday/hour heatmap cells.
func (s *Service) GetSalesByHour(ctx context.Context, set filters.Set) ([]HourCell, error) {
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	loader := func(ctx context.Context) (any, error) {
		rows, err := s.repo.SalesByHour(ctx, clause)
		if err != nil {
			return nil, err
		}
		cells := make([]HourCell, 0, len(rows))
		for _, row := range rows {
			label := ""
			if row.DiaSemana >= 0 && row.DiaSemana < len(weekdayLabels) {
				label = weekdayLabels[row.DiaSemana]
			}
			cells = append(cells, HourCell{
				DiaSemana: label,
				Hora:      row.Hora,
				Pedidos:   int(row.Pedidos),
				Receita:   orZero(row.Receita),
			})
		}
		return cells, nil
	}
	var cells []HourCell
	if err := s.cache.FetchJSON(ctx, key("sales-by-hour", set), &cells, loader); err != nil {
		return nil, err
	}
	return cells, nil
}

// GetPaymentMethods returns totals per payment type.
func (s *Service) GetPaymentMethods(ctx context.Context, set filters.Set) ([]PaymentMethod, error) {
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	loader := func(ctx context.Context) (any, error) {
		rows, err := s.repo.PaymentMethods(ctx, clause)
		if err != nil {
			return nil, err
		}
		out := make([]PaymentMethod, 0, len(rows))
		for _, row := range rows {
			out = append(out, PaymentMethod{
				Metodo:     row.Metodo,
				Online:     row.Online,
				Transacoes: int(row.Transacoes),
				Valor:      orZero(row.Valor),
			})
		}
		return out, nil
	}
	var out []PaymentMethod
	if err := s.cache.FetchJSON(ctx, key("payment-methods", set), &out, loader); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCouponPerformance returns redemption aggregates per coupon code.
func (s *Service) GetCouponPerformance(ctx context.Context, set filters.Set) ([]CouponPerformance, error) {
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	loader := func(ctx context.Context) (any, error) {
		rows, err := s.repo.CouponPerformance(ctx, clause)
		if err != nil {
			return nil, err
		}
		out := make([]CouponPerformance, 0, len(rows))
		for _, row := range rows {
			tipo := "Fixo"
			if row.DiscountType == "p" {
				tipo = "Percentual"
			}
			out = append(out, CouponPerformance{
				Code:          row.Code,
				Tipo:          tipo,
				Usos:          int(row.Usos),
				DescontoTotal: orZero(row.DescontoTotal),
				TicketMedio:   orZero(row.TicketMedio),
			})
		}
		return out, nil
	}
	var out []CouponPerformance
	if err := s.cache.FetchJSON(ctx, key("coupon-performance", set), &out, loader); err != nil {
		return nil, err
	}
	return out, nil
}

// GetFilterOptions loads the three option lists concurrently.
func (s *Service) GetFilterOptions(ctx context.Context) (FilterOptions, error) {
	loader := func(ctx context.Context) (any, error) {
		var opts FilterOptions
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			stores, err := s.repo.ListStores(ctx)
			if err != nil {
				return err
			}
			opts.Stores = stores
			return nil
		})
		g.Go(func() error {
			channels, err := s.repo.ListChannels(ctx)
			if err != nil {
				return err
			}
			opts.Channels = channels
			return nil
		})
		g.Go(func() error {
			subBrands, err := s.repo.ListSubBrands(ctx)
			if err != nil {
				return err
			}
			opts.SubBrands = subBrands
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return opts, nil
	}
	var opts FilterOptions
	if err := s.cache.FetchJSON(ctx, key("filter-options", filters.Set{}), &opts, loader); err != nil {
		return FilterOptions{}, err
	}
	return opts, nil
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

func orEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
