package dashboard

// Response payloads keep the field names the dashboard frontend already
// consumes; the feed is Brazilian Portuguese throughout.

// Metrics is the headline card payload with period-over-period growth.
type Metrics struct {
	Faturamento        float64 `json:"faturamento"`
	Pedidos            int     `json:"pedidos"`
	TicketMedio        float64 `json:"ticketMedio"`
	Clientes           int     `json:"clientes"`
	TaxasEntrega       float64 `json:"taxasEntrega"`
	Descontos          float64 `json:"descontos"`
	TempoMedioProducao int     `json:"tempoMedioProducao"`
	TempoMedioEntrega  int     `json:"tempoMedioEntrega"`
	Crescimento        Growth2 `json:"crescimento"`
}

// Growth2 holds the two growth percentages of the metrics card.
type Growth2 struct {
	Faturamento float64 `json:"faturamento"`
	Pedidos     float64 `json:"pedidos"`
}

// TimelinePoint is one day of the revenue timeline.
type TimelinePoint struct {
	Date    string  `json:"date"`
	Value   float64 `json:"value"`
	Pedidos int     `json:"pedidos"`
}

// ChannelSlice is one channel's share of the distribution chart.
type ChannelSlice struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Pedidos     int     `json:"pedidos"`
	Receita     float64 `json:"receita"`
	TicketMedio float64 `json:"ticketMedio"`
	Percentual  int     `json:"percentual"`
}

// StorePerformance is one store's row in the comparison table.
type StorePerformance struct {
	Name               string  `json:"name"`
	City               string  `json:"city"`
	State              string  `json:"state"`
	Pedidos            int     `json:"pedidos"`
	Receita            float64 `json:"receita"`
	TicketMedio        float64 `json:"ticketMedio"`
	TempoMedioProducao int     `json:"tempoMedioProducao"`
}

// HourCell is one weekday/hour cell of the sales heatmap.
type HourCell struct {
	DiaSemana string  `json:"diaSemana"`
	Hora      int     `json:"hora"`
	Pedidos   int     `json:"pedidos"`
	Receita   float64 `json:"receita"`
}

// PaymentMethod aggregates transactions per payment type.
type PaymentMethod struct {
	Metodo     string  `json:"metodo"`
	Online     bool    `json:"online"`
	Transacoes int     `json:"transacoes"`
	Valor      float64 `json:"valor"`
}

// CouponPerformance aggregates redemptions per coupon code.
type CouponPerformance struct {
	Code          string  `json:"code"`
	Tipo          string  `json:"tipo"`
	Usos          int     `json:"usos"`
	DescontoTotal float64 `json:"descontoTotal"`
	TicketMedio   float64 `json:"ticketMedio"`
}

// StoreOption, ChannelOption and SubBrandOption populate the filter bar.
type StoreOption struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	State    string `json:"state"`
	IsActive bool   `json:"is_active"`
}

type ChannelOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type SubBrandOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FilterOptions is the /filter-options payload.
type FilterOptions struct {
	Stores    []StoreOption    `json:"stores"`
	Channels  []ChannelOption  `json:"channels"`
	SubBrands []SubBrandOption `json:"subBrands"`
}
