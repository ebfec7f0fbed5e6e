package entity

// LineItem is one row of the extracted income statement. Values align
// positionally with FinancialExtraction.Periods; a nil entry means the
// document showed no figure for that period (preserved, never coerced to 0).
type LineItem struct {
	Name     string     `json:"name"`
	Values   []*float64 `json:"values"`
	Category string     `json:"category"` // Revenue | Expense | Profit
}

// FinancialExtraction is the validated shape of a financial-statement
// extraction. Invariant: len(item.Values) == len(Periods) for every item.
type FinancialExtraction struct {
	Currency  string     `json:"currency"`
	Scale     string     `json:"scale"`
	Periods   []string   `json:"periods"`
	LineItems []LineItem `json:"line_items"`
}

// FinancialMetadata is the summary returned to the caller in place of the
// full table (the table itself lives in the rendered workbook).
type FinancialMetadata struct {
	Currency       string   `json:"currency"`
	Scale          string   `json:"scale"`
	Periods        []string `json:"periods"`
	LineItemsCount int      `json:"line_items_count"`
	Method         string   `json:"method,omitempty"` // set to "ocr_fallback" when the fallback prompt produced the data
}

// Metadata derives the caller-facing summary from a validated extraction.
func (f *FinancialExtraction) Metadata() FinancialMetadata {
	return FinancialMetadata{
		Currency:       f.Currency,
		Scale:          f.Scale,
		Periods:        f.Periods,
		LineItemsCount: len(f.LineItems),
	}
}
