package products

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/brasa-analytics/brasa/internal/filters"
	"github.com/brasa-analytics/brasa/internal/platform/cache"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

type stubRepo struct {
	top          []TopProductRow
	items        []TopItemRow
	profitable   []ProfitableRow
	series       []SeasonalityRow
	seasonal     []SeasonalProductRow
	combinations []CombinationRow
	categories   []CategoryRow
	topCalls     int
	topLimit     int
}

func (s *stubRepo) TopProducts(ctx context.Context, clause filters.Clause, limit int) ([]TopProductRow, error) {
	s.topCalls++
	s.topLimit = limit
	return s.top, nil
}

func (s *stubRepo) TopItems(ctx context.Context, clause filters.Clause, limit int) ([]TopItemRow, error) {
	return s.items, nil
}

func (s *stubRepo) ProfitableProducts(ctx context.Context, clause filters.Clause, limit int) ([]ProfitableRow, error) {
	return s.profitable, nil
}

func (s *stubRepo) SeasonalityTimeSeries(ctx context.Context, clause filters.Clause) ([]SeasonalityRow, error) {
	return s.series, nil
}

func (s *stubRepo) SeasonalProducts(ctx context.Context, clause filters.Clause) ([]SeasonalProductRow, error) {
	return s.seasonal, nil
}

func (s *stubRepo) Combinations(ctx context.Context, clause filters.Clause, limit int) ([]CombinationRow, error) {
	return s.combinations, nil
}

func (s *stubRepo) CategoryPerformance(ctx context.Context, clause filters.Clause) ([]CategoryRow, error) {
	return s.categories, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, cache.NewStore(client, 5*time.Minute))
}

func TestGetTopProductsDefaultsAndCaches(t *testing.T) {
	repo := &stubRepo{top: []TopProductRow{
		{Name: "Picanha Burger", Categoria: str("Burgers"), Vendas: 120, Quantidade: f64(140), Receita: f64(4200), PrecoMedio: f64(30)},
	}}
	svc := newTestService(t, repo)
	ctx := context.Background()

	data, err := svc.GetTopProducts(ctx, filters.Set{Period: "30d"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.topLimit != DefaultTopLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultTopLimit, repo.topLimit)
	}
	if data[0].Categoria != "Burgers" || data[0].Receita != 4200 {
		t.Fatalf("unexpected row %+v", data[0])
	}

	if _, err := svc.GetTopProducts(ctx, filters.Set{Period: "30d"}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.topCalls != 1 {
		t.Fatalf("expected cached second call, repo hit %d times", repo.topCalls)
	}

	// A different limit is a different cache entry.
	if _, err := svc.GetTopProducts(ctx, filters.Set{Period: "30d"}, 25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.topCalls != 2 || repo.topLimit != 25 {
		t.Fatalf("expected fresh query with limit 25, calls=%d limit=%d", repo.topCalls, repo.topLimit)
	}
}

func TestGetTopProductsNullCategory(t *testing.T) {
	repo := &stubRepo{top: []TopProductRow{{Name: "Refrigerante", Vendas: 10}}}
	svc := newTestService(t, repo)

	data, err := svc.GetTopProducts(context.Background(), filters.Set{}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data[0].Categoria != "" {
		t.Fatalf("expected empty category for null, got %q", data[0].Categoria)
	}
}

func TestGetTopProductsRejectsInvalidPeriod(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	if _, err := svc.GetTopProducts(context.Background(), filters.Set{Period: "soon"}, 0); err == nil {
		t.Fatal("expected error for invalid period")
	}
	if repo.topCalls != 0 {
		t.Fatalf("repository must not be queried, got %d calls", repo.topCalls)
	}
}

func TestGetProfitableProductsRankingAsID(t *testing.T) {
	repo := &stubRepo{profitable: []ProfitableRow{
		{Ranking: 1, Name: "Picanha Burger", Categoria: "Burgers", Vendas: 120, Receita: f64(4200), PercentualCategoria: f64(0.62)},
		{Ranking: 2, Name: "Costela BBQ", Categoria: "Burgers", Vendas: 90, Receita: f64(2500), PercentualCategoria: f64(0.38)},
	}}
	svc := newTestService(t, repo)

	data, err := svc.GetProfitableProducts(context.Background(), filters.Set{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data[0].ID != 1 || data[1].ID != 2 {
		t.Fatalf("expected ranking positions as ids, got %d/%d", data[0].ID, data[1].ID)
	}
	if data[0].PercentualCategoria != 0.62 {
		t.Fatalf("expected category share 0.62, got %v", data[0].PercentualCategoria)
	}
}

func TestGetSeasonalityFormatsPeriod(t *testing.T) {
	repo := &stubRepo{
		series: []SeasonalityRow{
			{Periodo: time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC), ProdutosUnicos: 14, Quantidade: f64(220), Receita: f64(6400), Vendas: 180},
		},
		seasonal: []SeasonalProductRow{{Nome: "Açaí 500ml", Variacao: f64(2.4)}},
	}
	svc := newTestService(t, repo)

	data, err := svc.GetSeasonality(context.Background(), filters.Set{Period: "90d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.TimeSeries[0].Periodo != "09/07/2024" {
		t.Fatalf("expected dd/mm/yyyy label, got %q", data.TimeSeries[0].Periodo)
	}
	if len(data.TopSazonais) != 1 || data.TopSazonais[0].Variacao != 2.4 {
		t.Fatalf("unexpected seasonal products %+v", data.TopSazonais)
	}
}

func TestGetCombinationsCoercesNullPrices(t *testing.T) {
	repo := &stubRepo{combinations: []CombinationRow{
		{
			ProdutoPrincipal:      "Picanha Burger",
			ItemCombinado:         "Batata Rústica",
			Frequencia:            42,
			PercentualPedidos:     f64(0.12),
			ReceitaTotal:          f64(1890),
			TicketMedioCombinacao: f64(45),
		},
	}}
	svc := newTestService(t, repo)

	data, err := svc.GetCombinations(context.Background(), filters.Set{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data[0].PrecoMedioPrincipal != 0 || data[0].PrecoMedioCombinado != 0 {
		t.Fatalf("expected null prices coerced to zero, got %+v", data[0])
	}
	if data[0].Frequencia != 42 || data[0].ReceitaTotal != 1890 {
		t.Fatalf("unexpected combination %+v", data[0])
	}
}

func TestGetCategoryPerformance(t *testing.T) {
	repo := &stubRepo{categories: []CategoryRow{
		{Categoria: "Burgers", ProdutosUnicos: 8, Quantidade: f64(900), Pedidos: 600, Receita: f64(21000), TicketMedio: f64(35), PercentualReceita: f64(0.55)},
		{Categoria: "Sem Categoria", ProdutosUnicos: 2, Pedidos: 40},
	}}
	svc := newTestService(t, repo)

	data, err := svc.GetCategoryPerformance(context.Background(), filters.Set{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data[0].PercentualReceita != 0.55 {
		t.Fatalf("expected revenue share 0.55, got %v", data[0].PercentualReceita)
	}
	if data[1].Receita != 0 {
		t.Fatalf("expected null revenue coerced to zero, got %v", data[1].Receita)
	}
}
