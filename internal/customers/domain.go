// Package customers serves the customer analytics: recency buckets, top
// spenders and frequency segmentation.
package customers

import "time"

// Metrics buckets the customer base by purchase recency. The 7/15/30/90-day
// buckets are mutually exclusive; ClientesAtivos overlaps them as the rolling
// 30-day headline figure.
type Metrics struct {
	TotalClientes    int     `json:"total_clientes"`
	ClientesAtivos7d int     `json:"clientes_ativos_7d"`
	ClientesAtivos15 int     `json:"clientes_ativos_15d"`
	ClientesAtivos30 int     `json:"clientes_ativos_30d"`
	ClientesAtivos90 int     `json:"clientes_ativos_90d"`
	ClientesInativos int     `json:"clientes_inativos"`
	ClientesAtivos   int     `json:"clientes_ativos"`
	TicketMedioGeral float64 `json:"ticket_medio_geral"`
	FrequenciaMedia  float64 `json:"frequencia_media"`
}

// TopCustomer is one row of the spending ranking.
type TopCustomer struct {
	ID                    int64     `json:"id"`
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	Phone                 string    `json:"phone"`
	TotalPedidos          int       `json:"totalPedidos"`
	TotalGasto            float64   `json:"totalGasto"`
	TicketMedio           float64   `json:"ticketMedio"`
	UltimaCompra          time.Time `json:"ultimaCompra"`
	LojasFrequentadas     int       `json:"lojasFrequentadas"`
	DiasDesdeUltimaCompra int       `json:"diasDesdeUltimaCompra"`
}

// Segment is one cell of the frequency/recency segmentation grid.
type Segment struct {
	Segmento           string  `json:"segmento"`
	StatusAtivo        string  `json:"status_ativo"`
	QuantidadeClientes int     `json:"quantidade_clientes"`
	MediaPedidos       float64 `json:"media_pedidos"`
	MediaGasto         float64 `json:"media_gasto"`
}
