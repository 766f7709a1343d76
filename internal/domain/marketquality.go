package domain

// MarginSummary describes one book's structural edge across its closing
// lines. Corresponds to margin_summaries table in PostgreSQL.
type MarginSummary struct {
	BookKey         string
	Games           int // closing lines with both sides priced and in domain
	AvgOverround    float64
	MedianOverround float64
	MinOverround    float64
	MaxOverround    float64
}

// BestPriceFrequency counts how often one book supplied the best available
// price. Corresponds to best_price_shares table in PostgreSQL. Each event
// with both best sides known contributes two slots (home and away); Share is
// this book's TotalCount over all slots.
type BestPriceFrequency struct {
	BookKey    string
	HomeCount  int
	AwayCount  int
	TotalCount int
	Share      float64
}
