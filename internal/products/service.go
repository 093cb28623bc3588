package products

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/brasa-analytics/brasa/internal/filters"
	"github.com/brasa-analytics/brasa/internal/platform/cache"
)

// Default result sizes per ranking endpoint.
const (
	DefaultTopLimit          = 10
	DefaultProfitableLimit   = 20
	DefaultCombinationsLimit = 15
)

// Repository exposes the product aggregate queries the service relies on.
type Repository interface {
	TopProducts(ctx context.Context, clause filters.Clause, limit int) ([]TopProductRow, error)
	TopItems(ctx context.Context, clause filters.Clause, limit int) ([]TopItemRow, error)
	ProfitableProducts(ctx context.Context, clause filters.Clause, limit int) ([]ProfitableRow, error)
	SeasonalityTimeSeries(ctx context.Context, clause filters.Clause) ([]SeasonalityRow, error)
	SeasonalProducts(ctx context.Context, clause filters.Clause) ([]SeasonalProductRow, error)
	Combinations(ctx context.Context, clause filters.Clause, limit int) ([]CombinationRow, error)
	CategoryPerformance(ctx context.Context, clause filters.Clause) ([]CategoryRow, error)
}

// Service coordinates product analytics with the response cache. Only the
// two hot ranking endpoints are cached; the heavier exploratory queries are
// always fresh.
type Service struct {
	repo  Repository
	cache *cache.Store
}

// NewService wires a Repository with the cache helper.
func NewService(repo Repository, store *cache.Store) *Service {
	return &Service{repo: repo, cache: store}
}

func key(endpoint string, set filters.Set, limit int) string {
	return strings.Join([]string{"brasa", "products", endpoint, set.CacheToken(), strconv.Itoa(limit)}, ":")
}

// GetTopProducts returns the product revenue ranking.
func (s *Service) GetTopProducts(ctx context.Context, set filters.Set, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	loader := func(ctx context.Context) (any, error) {
		rows, err := s.repo.TopProducts(ctx, clause, limit)
		if err != nil {
			return nil, err
		}
		out := make([]TopProduct, 0, len(rows))
		for _, row := range rows {
			out = append(out, TopProduct{
				Name:       row.Name,
				Categoria:  orEmpty(row.Categoria),
				Vendas:     int(row.Vendas),
				Quantidade: orZero(row.Quantidade),
				Receita:    orZero(row.Receita),
				PrecoMedio: orZero(row.PrecoMedio),
			})
		}
		return out, nil
	}
	var out []TopProduct
	if err := s.cache.FetchJSON(ctx, key("top-products", set, limit), &out, loader); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTopItems returns the add-on item revenue ranking.
func (s *Service) GetTopItems(ctx context.Context, set filters.Set, limit int) ([]TopItem, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	loader := func(ctx context.Context) (any, error) {
		rows, err := s.repo.TopItems(ctx, clause, limit)
		if err != nil {
			return nil, err
		}
		out := make([]TopItem, 0, len(rows))
		for _, row := range rows {
			out = append(out, TopItem{
				Name:            row.Name,
				Grupo:           orEmpty(row.Grupo),
				VezesAdicionado: int(row.VezesAdicionado),
				Quantidade:      orZero(row.Quantidade),
				Receita:         orZero(row.Receita),
			})
		}
		return out, nil
	}
	var out []TopItem
	if err := s.cache.FetchJSON(ctx, key("top-items", set, limit), &out, loader); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProfitableProducts returns the revenue ranking annotated with each
// product's share of its category.
func (s *Service) GetProfitableProducts(ctx context.Context, set filters.Set, limit int) ([]ProfitableProduct, error) {
	if limit <= 0 {
		limit = DefaultProfitableLimit
	}
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ProfitableProducts(ctx, clause, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ProfitableProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, ProfitableProduct{
			ID:                  int(row.Ranking),
			Name:                row.Name,
			Categoria:           row.Categoria,
			Vendas:              int(row.Vendas),
			Quantidade:          orZero(row.Quantidade),
			Receita:             orZero(row.Receita),
			PrecoMedio:          orZero(row.PrecoMedio),
			PercentualCategoria: orZero(row.PercentualCategoria),
		})
	}
	return out, nil
}

// GetSeasonality loads the daily series and the most volatile products
// concurrently.
func (s *Service) GetSeasonality(ctx context.Context, set filters.Set) (Seasonality, error) {
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return Seasonality{}, err
	}

	var series []SeasonalityRow
	var seasonal []SeasonalProductRow
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.repo.SeasonalityTimeSeries(ctx, clause)
		if err != nil {
			return err
		}
		series = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.SeasonalProducts(ctx, clause)
		if err != nil {
			return err
		}
		seasonal = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return Seasonality{}, err
	}

	result := Seasonality{
		TimeSeries:  make([]SeasonalityPoint, 0, len(series)),
		TopSazonais: make([]SeasonalProduct, 0, len(seasonal)),
	}
	for _, row := range series {
		result.TimeSeries = append(result.TimeSeries, SeasonalityPoint{
			Periodo:        row.Periodo.Format("02/01/2006"),
			ProdutosUnicos: int(row.ProdutosUnicos),
			Quantidade:     orZero(row.Quantidade),
			Receita:        orZero(row.Receita),
			Vendas:         int(row.Vendas),
		})
	}
	for _, row := range seasonal {
		result.TopSazonais = append(result.TopSazonais, SeasonalProduct{
			Nome:     row.Nome,
			Variacao: orZero(row.Variacao),
		})
	}
	return result, nil
}

// GetCombinations returns product pairs frequently sold together.
func (s *Service) GetCombinations(ctx context.Context, set filters.Set, limit int) ([]Combination, error) {
	if limit <= 0 {
		limit = DefaultCombinationsLimit
	}
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Combinations(ctx, clause, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Combination, 0, len(rows))
	for _, row := range rows {
		out = append(out, Combination{
			ProdutoPrincipal:      row.ProdutoPrincipal,
			ItemCombinado:         row.ItemCombinado,
			Frequencia:            int(row.Frequencia),
			PercentualPedidos:     orZero(row.PercentualPedidos),
			ReceitaTotal:          orZero(row.ReceitaTotal),
			TicketMedioCombinacao: orZero(row.TicketMedioCombinacao),
			PrecoMedioPrincipal:   orZero(row.PrecoMedioPrincipal),
			PrecoMedioCombinado:   orZero(row.PrecoMedioCombinado),
			IncrementoTicket:      orZero(row.IncrementoTicket),
			Score:                 orZero(row.Score),
		})
	}
	return out, nil
}

// GetCategoryPerformance returns the per-category product mix.
func (s *Service) GetCategoryPerformance(ctx context.Context, set filters.Set) ([]CategoryPerformance, error) {
	clause, err := filters.Compile(set, filters.Default)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.CategoryPerformance(ctx, clause)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryPerformance, 0, len(rows))
	for _, row := range rows {
		out = append(out, CategoryPerformance{
			Categoria:         row.Categoria,
			ProdutosUnicos:    int(row.ProdutosUnicos),
			Quantidade:        orZero(row.Quantidade),
			Pedidos:           int(row.Pedidos),
			Receita:           orZero(row.Receita),
			TicketMedio:       orZero(row.TicketMedio),
			PercentualReceita: orZero(row.PercentualReceita),
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
