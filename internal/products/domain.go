// Package products serves the product mix analytics: rankings, categories,
// seasonality and combination mining.
package products

// TopProduct is one row of the product revenue ranking.
type TopProduct struct {
	Name       string  `json:"name"`
	Categoria  string  `json:"categoria"`
	Vendas     int     `json:"vendas"`
	Quantidade float64 `json:"quantidade"`
	Receita    float64 `json:"receita"`
	PrecoMedio float64 `json:"precoMedio"`
}

// TopItem is one add-on item (extras such as bacon or cheese) ranked by
// revenue.
type TopItem struct {
	Name            string  `json:"name"`
	Grupo           string  `json:"grupo"`
	VezesAdicionado int     `json:"vezesAdicionado"`
	Quantidade      float64 `json:"quantidade"`
	Receita         float64 `json:"receita"`
}

// ProfitableProduct ranks products by revenue with their share inside the
// category. ID carries the ranking position, not a database key.
type ProfitableProduct struct {
	ID                  int     `json:"id"`
	Name                string  `json:"name"`
	Categoria           string  `json:"categoria"`
	Vendas              int     `json:"vendas"`
	Quantidade          float64 `json:"quantidade"`
	Receita             float64 `json:"receita"`
	PrecoMedio          float64 `json:"precoMedio"`
	PercentualCategoria float64 `json:"percentual_categoria"`
}

// SeasonalityPoint is one day of the product sales series.
type SeasonalityPoint struct {
	Periodo        string  `json:"periodo"`
	ProdutosUnicos int     `json:"produtos_unicos"`
	Quantidade     float64 `json:"quantidade"`
	Receita        float64 `json:"receita"`
	Vendas         int     `json:"vendas"`
}

// SeasonalProduct is a product whose daily quantity swings the most.
type SeasonalProduct struct {
	Nome     string  `json:"nome"`
	Variacao float64 `json:"variacao"`
}

// Seasonality bundles the time series with the most volatile products.
type Seasonality struct {
	TimeSeries  []SeasonalityPoint `json:"timeSeries"`
	TopSazonais []SeasonalProduct  `json:"top_sazonais"`
}

// Combination is a pair of products frequently sold in the same order.
type Combination struct {
	ProdutoPrincipal      string  `json:"produto_principal"`
	ItemCombinado         string  `json:"item_combinado"`
	Frequencia            int     `json:"frequencia"`
	PercentualPedidos     float64 `json:"percentual_pedidos"`
	ReceitaTotal          float64 `json:"receita_total"`
	TicketMedioCombinacao float64 `json:"ticket_medio_combinacao"`
	PrecoMedioPrincipal   float64 `json:"preco_medio_principal"`
	PrecoMedioCombinado   float64 `json:"preco_medio_combinado"`
	IncrementoTicket      float64 `json:"incremento_ticket"`
	Score                 float64 `json:"score"`
}

// CategoryPerformance aggregates the product mix per category.
type CategoryPerformance struct {
	Categoria         string  `json:"categoria"`
	ProdutosUnicos    int     `json:"produtos_unicos"`
	Quantidade        float64 `json:"quantidade"`
	Pedidos           int     `json:"pedidos"`
	Receita           float64 `json:"receita"`
	TicketMedio       float64 `json:"ticket_medio"`
	PercentualReceita float64 `json:"percentual_receita"`
}
