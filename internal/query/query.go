// Package query serves the ad-hoc metric/dimension explorer. Both axes are
// whitelisted; nothing from the request body ever reaches the SQL text.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brasa-analytics/brasa/internal/filters"
)

// ErrUnknownAxis rejects a metric or dimension outside the whitelist.
var ErrUnknownAxis = errors.New("query: unknown metric or dimension")

// Request selects one metric aggregated over one dimension, optionally
// scoped by the standard dashboard filters.
type Request struct {
	Metric    string      `json:"metric" validate:"required"`
	Dimension string      `json:"dimension" validate:"required"`
	Filters   filters.Set `json:"filters"`
}

// Row is one label/value pair of the result.
type Row struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// metricSQL whitelists the aggregations the explorer may compute.
var metricSQL = map[string]string{
	"revenue":         "SUM(s.total_amount)",
	"orders":          "COUNT(DISTINCT s.id)",
	"avg_ticket":      "AVG(s.total_amount)",
	"customers":       "COUNT(DISTINCT s.customer_id)",
	"items_sold":      "SUM(ps.quantity)",
	"production_time": "AVG(s.production_seconds)",
	"delivery_time":   "AVG(s.delivery_seconds)",
}

// dimensionSQL whitelists the grouping expressions.
var dimensionSQL = map[string]string{
	"channel":        "c.name",
	"store":          "st.name",
	"product":        "p.name",
	"category":       "cat.name",
	"weekday":        "EXTRACT(DOW FROM s.created_at)",
	"hour":           "EXTRACT(HOUR FROM s.created_at)",
	"payment_method": "pt.description",
}

// Runner exposes the row query surface the service needs from pgx.
type Runner interface {
	Query(ctx context.Context, clause filters.Clause, sql string) ([]Row, error)
}

// Service compiles and executes whitelisted ad-hoc queries.
type Service struct {
	runner   Runner
	validate *validator.Validate
}

// NewService wires a Runner.
func NewService(runner Runner) *Service {
	return &Service{runner: runner, validate: validator.New()}
}

// BuildSQL renders the SELECT for a validated request. The FROM chain grows
// the product and payment joins only when the chosen axes need them.
func BuildSQL(req Request, clause filters.Clause) (string, error) {
	metric, ok := metricSQL[req.Metric]
	if !ok {
		return "", fmt.Errorf("%w: metric %q", ErrUnknownAxis, req.Metric)
	}
	dimension, ok := dimensionSQL[req.Dimension]
	if !ok {
		return "", fmt.Errorf("%w: dimension %q", ErrUnknownAxis, req.Dimension)
	}

	from := "FROM sales s JOIN channels c ON s.channel_id = c.id JOIN stores st ON s.store_id = st.id"
	if req.Dimension == "product" || req.Dimension == "category" || req.Metric == "items_sold" {
		from += " JOIN product_sales ps ON s.id = ps.sale_id JOIN products p ON ps.product_id = p.id LEFT JOIN categories cat ON p.category_id = cat.id"
	}
	if req.Dimension == "payment_method" {
		from += " JOIN payments pay ON s.id = pay.sale_id JOIN payment_types pt ON pay.payment_type_id = pt.id"
	}

	// The cast keeps numeric dimensions (weekday, hour) scannable as text.
	return fmt.Sprintf(`SELECT
	(%s)::text AS label,
	%s AS value
%s
%s
GROUP BY %s
ORDER BY value DESC
LIMIT 20`, dimension, metric, from, clause.SQL, dimension), nil
}

// Run validates, compiles and executes the request.
func (s *Service) Run(ctx context.Context, req Request) ([]Row, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownAxis, err)
	}
	clause, err := filters.Compile(req.Filters, filters.Default)
	if err != nil {
		return nil, err
	}
	sql, err := BuildSQL(req, clause)
	if err != nil {
		return nil, err
	}
	return s.runner.Query(ctx, clause, sql)
}

// PgxRunner executes explorer queries against the pool.
type PgxRunner struct {
	pool *pgxpool.Pool
}

// NewPgxRunner constructs the pgx-backed runner.
func NewPgxRunner(pool *pgxpool.Pool) *PgxRunner {
	return &PgxRunner{pool: pool}
}

// Query runs the rendered SQL with the clause arguments. Labels arrive as
// text or numeric depending on the dimension, so both sides scan through
// intermediate nullables.
func (r *PgxRunner) Query(ctx context.Context, clause filters.Clause, sql string) ([]Row, error) {
	rows, err := r.pool.Query(ctx, sql, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("query: run: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var label *string
		var value *float64
		if err := rows.Scan(&label, &value); err != nil {
			return nil, err
		}
		row := Row{}
		if label != nil {
			row.Label = *label
		}
		if value != nil {
			row.Value = *value
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
