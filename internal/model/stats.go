package model

// Statistics holds the aggregate figures computed over all items.
// Missing prices count as zero in all sums.
type Statistics struct {
	TotalItems   int            `json:"totalItems"`
	SoldItems    int            `json:"soldItems"`
	UnpaidItems  int            `json:"unpaidItems"`
	TotalSales   float64        `json:"totalSales"`
	SalesByMonth []MonthlySales `json:"salesByMonth"`
}

// MonthlySales is one month's worth of sold items, keyed by the calendar
// month ("2026-08") of the items' creation timestamps.
type MonthlySales struct {
	Month string  `json:"month"`
	Items int     `json:"items"`
	Sales float64 `json:"sales"`
}
