// Package operations serves the kitchen and delivery efficiency analytics,
// cancellation tracking included. Cancelled orders stay in scope here, unlike
// the revenue dashboards.
package operations

// Metrics is the operational summary card.
type Metrics struct {
	TempoMedioProducao float64 `json:"tempo_medio_producao"`
	TempoMedioEntrega  float64 `json:"tempo_medio_entrega"`
	TaxaCancelamento   float64 `json:"taxa_cancelamento"`
	TotalCancelamentos int     `json:"total_cancelamentos"`
	PedidosPorHora     float64 `json:"pedidos_por_hora"`
	EficienciaGeral    float64 `json:"eficiencia_geral"`
}

// HourMetrics is one hour bucket of production and delivery times.
type HourMetrics struct {
	Hora               int `json:"hora"`
	TempoMedioProducao int `json:"tempo_medio_producao"`
	TempoMedioEntrega  int `json:"tempo_medio_entrega"`
	TotalPedidos       int `json:"total_pedidos"`
	Cancelamentos      int `json:"cancelamentos"`
}

// CancelReason counts cancellations attributed to one reason.
type CancelReason struct {
	Motivo     string `json:"motivo"`
	Quantidade int    `json:"quantidade"`
}

// CancelHour is one hour bucket of the cancellation rate series.
type CancelHour struct {
	Hora              int     `json:"hora"`
	TotalHora         int     `json:"total_hora"`
	CancelamentosHora int     `json:"cancelamentos_hora"`
	TaxaCancelamento  float64 `json:"taxa_cancelamento"`
}

// CancellationMetrics bundles the cancellation summary with its reason and
// hourly breakdowns.
type CancellationMetrics struct {
	TotalPedidos           int            `json:"total_pedidos"`
	TotalCancelamentos     int            `json:"total_cancelamentos"`
	TaxaCancelamentoGeral  float64        `json:"taxa_cancelamento_geral"`
	CancelamentosPorMotivo []CancelReason `json:"cancelamentos_por_motivo"`
	CancelamentosPorHora   []CancelHour   `json:"cancelamentos_por_hora"`
}
