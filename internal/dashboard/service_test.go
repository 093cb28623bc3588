package dashboard

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/brasa-analytics/brasa/internal/filters"
	"github.com/brasa-analytics/brasa/internal/platform/cache"
)

func f64(v float64) *float64 { return &v }

type stubRepo struct {
	summary       SummaryRow
	totals        TotalsRow
	timeline      []TimelineRow
	channels      []ChannelRow
	stores        []StoreRow
	hours         []HourRow
	payments      []PaymentRow
	coupons       []CouponRow
	summaryCalls  int
	totalsCalls   int
	summaryClause filters.Clause
	totalsClause  filters.Clause
}

func (s *stubRepo) MetricsSummary(ctx context.Context, clause filters.Clause) (SummaryRow, error) {
	s.summaryCalls++
	s.summaryClause = clause
	return s.summary, nil
}

func (s *stubRepo) ComparisonTotals(ctx context.Context, clause filters.Clause) (TotalsRow, error) {
	s.totalsCalls++
	s.totalsClause = clause
	return s.totals, nil
}

func (s *stubRepo) RevenueTimeline(ctx context.Context, clause filters.Clause) ([]TimelineRow, error) {
	return s.timeline, nil
}

func (s *stubRepo) ChannelDistribution(ctx context.Context, clause filters.Clause) ([]ChannelRow, error) {
	return s.channels, nil
}

func (s *stubRepo) StorePerformance(ctx context.Context, clause filters.Clause) ([]StoreRow, error) {
	return s.stores, nil
}

func (s *stubRepo) SalesByHour(ctx context.Context, clause filters.Clause) ([]HourRow, error) {
	return s.hours, nil
}

func (s *stubRepo) PaymentMethods(ctx context.Context, clause filters.Clause) ([]PaymentRow, error) {
	return s.payments, nil
}

func (s *stubRepo) CouponPerformance(ctx context.Context, clause filters.Clause) ([]CouponRow, error) {
	return s.coupons, nil
}

func (s *stubRepo) ListStores(ctx context.Context) ([]StoreOption, error) {
	return []StoreOption{{ID: 1, Name: "Centro"}}, nil
}

func (s *stubRepo) ListChannels(ctx context.Context) ([]ChannelOption, error) {
	return []ChannelOption{{ID: 1, Name: "iFood", Type: "D"}}, nil
}

func (s *stubRepo) ListSubBrands(ctx context.Context) ([]SubBrandOption, error) {
	return []SubBrandOption{{ID: 3, Name: "Brasa Prime"}}, nil
}

func newTestService(t *testing.T, repo Repository) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, cache.NewStore(client, 5*time.Minute)), mr
}

func TestGetMetricsComputesGrowth(t *testing.T) {
	repo := &stubRepo{
		summary: SummaryRow{
			Pedidos:       200,
			Faturamento:   f64(1000),
			TicketMedio:   f64(5),
			Clientes:      150,
			TaxasEntrega:  f64(120),
			Descontos:     f64(80),
			TempoProducao: f64(17.9),
			TempoEntrega:  f64(31.2),
		},
		totals: TotalsRow{Pedidos: 160, Faturamento: f64(800)},
	}
	svc, _ := newTestService(t, repo)

	metrics, err := svc.GetMetrics(context.Background(), filters.Set{Period: "30d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.Faturamento != 1000 {
		t.Fatalf("expected faturamento 1000, got %v", metrics.Faturamento)
	}
	if metrics.Crescimento.Faturamento != 25.0 {
		t.Fatalf("expected revenue growth 25.0, got %v", metrics.Crescimento.Faturamento)
	}
	if metrics.Crescimento.Pedidos != 25.0 {
		t.Fatalf("expected order growth 25.0, got %v", metrics.Crescimento.Pedidos)
	}
	if metrics.TempoMedioProducao != 17 {
		t.Fatalf("expected production time truncated to 17, got %d", metrics.TempoMedioProducao)
	}
	if repo.summaryCalls != 1 || repo.totalsCalls != 1 {
		t.Fatalf("expected one call each, got %d/%d", repo.summaryCalls, repo.totalsCalls)
	}
}

func TestGetMetricsNullAggregatesCoerceToZero(t *testing.T) {
	repo := &stubRepo{summary: SummaryRow{}, totals: TotalsRow{}}
	svc, _ := newTestService(t, repo)

	metrics, err := svc.GetMetrics(context.Background(), filters.Set{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.Faturamento != 0 || metrics.TicketMedio != 0 || metrics.Crescimento.Faturamento != 0 {
		t.Fatalf("expected zeroed metrics, got %+v", metrics)
	}
}

func TestGetMetricsRejectsInvalidPeriodBeforeQuerying(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := newTestService(t, repo)

	_, err := svc.GetMetrics(context.Background(), filters.Set{Period: "abc"})
	if err == nil {
		t.Fatal("expected error for invalid period")
	}
	if repo.summaryCalls != 0 || repo.totalsCalls != 0 {
		t.Fatalf("repository must not be queried, got %d/%d calls", repo.summaryCalls, repo.totalsCalls)
	}
}

func TestGetMetricsComparisonClauseRelative(t *testing.T) {
	repo := &stubRepo{summary: SummaryRow{}, totals: TotalsRow{}}
	svc, _ := newTestService(t, repo)

	if _, err := svc.GetMetrics(context.Background(), filters.Set{Period: "7d", Store: "5"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sql := repo.totalsClause.SQL
	if !strings.Contains(sql, "s.created_at >= NOW() - INTERVAL '1 day' * $") {
		t.Fatalf("expected half-open lower bound, got %q", sql)
	}
	if !strings.Contains(sql, "s.created_at < NOW() - INTERVAL '1 day' * $") {
		t.Fatalf("expected exclusive upper bound, got %q", sql)
	}
	args := repo.totalsClause.Args
	if len(args) != 3 {
		t.Fatalf("expected store id plus two day offsets, got %v", args)
	}
	if args[1] != 14 || args[2] != 7 {
		t.Fatalf("expected offsets 14 and 7, got %v and %v", args[1], args[2])
	}
}

func TestGetMetricsComparisonClauseExplicitDates(t *testing.T) {
	repo := &stubRepo{summary: SummaryRow{}, totals: TotalsRow{}}
	svc, _ := newTestService(t, repo)

	set := filters.Set{StartDate: "2024-03-11", EndDate: "2024-03-20"}
	if _, err := svc.GetMetrics(context.Background(), set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args := repo.totalsClause.Args
	if len(args) != 2 {
		t.Fatalf("expected two timestamp args, got %v", args)
	}
	start, ok := args[0].(time.Time)
	if !ok {
		t.Fatalf("expected time.Time lower bound, got %T", args[0])
	}
	if start.Day() != 1 || start.Month() != time.March {
		t.Fatalf("expected previous window starting 2024-03-01, got %v", start)
	}
	for _, arg := range repo.summaryClause.Args {
		if _, isTime := arg.(time.Time); isTime {
			t.Fatalf("current window binds the raw date strings, got %T", arg)
		}
	}
}

func TestGetMetricsCachesUntilExpiry(t *testing.T) {
	repo := &stubRepo{
		summary: SummaryRow{Pedidos: 10, Faturamento: f64(500)},
		totals:  TotalsRow{Pedidos: 5, Faturamento: f64(250)},
	}
	svc, mr := newTestService(t, repo)
	ctx := context.Background()
	set := filters.Set{Period: "7d"}

	if _, err := svc.GetMetrics(ctx, set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetMetrics(ctx, set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.summaryCalls != 1 {
		t.Fatalf("expected cached second call, repo hit %d times", repo.summaryCalls)
	}

	// A different filter set is a different cache entry.
	if _, err := svc.GetMetrics(ctx, filters.Set{Period: "30d"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.summaryCalls != 2 {
		t.Fatalf("expected distinct entry per filter set, repo hit %d times", repo.summaryCalls)
	}

	mr.FastForward(6 * time.Minute)
	if _, err := svc.GetMetrics(ctx, set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.summaryCalls != 3 {
		t.Fatalf("expected reload after TTL, repo hit %d times", repo.summaryCalls)
	}
}

func TestGetChannelDistributionShares(t *testing.T) {
	repo := &stubRepo{channels: []ChannelRow{
		{Name: "iFood", Type: "D", Pedidos: 30, Receita: f64(750), TicketMedio: f64(25)},
		{Name: "Balcão", Type: "P", Pedidos: 10, Receita: f64(250), TicketMedio: f64(25)},
	}}
	svc, _ := newTestService(t, repo)

	slices, err := svc.GetChannelDistribution(context.Background(), filters.Set{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(slices))
	}
	if slices[0].Percentual != 75 || slices[1].Percentual != 25 {
		t.Fatalf("expected 75/25 split, got %d/%d", slices[0].Percentual, slices[1].Percentual)
	}
	if slices[0].Type != "Delivery" || slices[1].Type != "Presencial" {
		t.Fatalf("expected type labels, got %q/%q", slices[0].Type, slices[1].Type)
	}
}

func TestGetChannelDistributionZeroRevenue(t *testing.T) {
	repo := &stubRepo{channels: []ChannelRow{{Name: "iFood", Type: "D"}}}
	svc, _ := newTestService(t, repo)

	slices, err := svc.GetChannelDistribution(context.Background(), filters.Set{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slices[0].Percentual != 0 {
		t.Fatalf("expected 0%% share on zero revenue, got %d", slices[0].Percentual)
	}
}

func TestGetRevenueTimelineFormatsDates(t *testing.T) {
	repo := &stubRepo{timeline: []TimelineRow{
		{Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Value: f64(310.5), Pedidos: 12},
	}}
	svc, _ := newTestService(t, repo)

	points, err := svc.GetRevenueTimeline(context.Background(), filters.Set{Period: "7d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points[0].Date != "05/03" {
		t.Fatalf("expected dd/mm label, got %q", points[0].Date)
	}
	if points[0].Value != 310.5 || points[0].Pedidos != 12 {
		t.Fatalf("unexpected point %+v", points[0])
	}
}

func TestGetSalesByHourWeekdayLabels(t *testing.T) {
	repo := &stubRepo{hours: []HourRow{
		{DiaSemana: 0, Hora: 12, Pedidos: 4, Receita: f64(90)},
		{DiaSemana: 6, Hora: 20, Pedidos: 9, Receita: f64(300)},
	}}
	svc, _ := newTestService(t, repo)

	cells, err := svc.GetSalesByHour(context.Background(), filters.Set{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cells[0].DiaSemana != "Dom" || cells[1].DiaSemana != "Sáb" {
		t.Fatalf("expected weekday labels Dom/Sáb, got %q/%q", cells[0].DiaSemana, cells[1].DiaSemana)
	}
}

func TestGetCouponPerformanceTypeLabels(t *testing.T) {
	repo := &stubRepo{coupons: []CouponRow{
		{Code: "BRASA10", DiscountType: "p", Usos: 40, DescontoTotal: f64(400), TicketMedio: f64(52)},
		{Code: "FRETEGRATIS", DiscountType: "f", Usos: 15, DescontoTotal: f64(120), TicketMedio: f64(47)},
	}}
	svc, _ := newTestService(t, repo)

	coupons, err := svc.GetCouponPerformance(context.Background(), filters.Set{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coupons[0].Tipo != "Percentual" || coupons[1].Tipo != "Fixo" {
		t.Fatalf("expected Percentual/Fixo, got %q/%q", coupons[0].Tipo, coupons[1].Tipo)
	}
}

func TestGetFilterOptionsLoadsAllLists(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{})

	opts, err := svc.GetFilterOptions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts.Stores) != 1 || len(opts.Channels) != 1 || len(opts.SubBrands) != 1 {
		t.Fatalf("expected all option lists populated, got %+v", opts)
	}
}
