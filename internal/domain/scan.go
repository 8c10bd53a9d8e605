package domain

// StockResult is the marketplace's answer for one blueprint query.
type StockResult struct {
	InStock       bool
	LowPriceCents *int64
}

// ScanSummary reports the counters accumulated over one user scan. The
// counters are observability only; nothing branches on them.
type ScanSummary struct {
	ItemsSeen    int
	APICalls     int
	ItemsUpdated int
	RateLimited  bool
}
