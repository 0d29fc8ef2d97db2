package control

import (
	"sort"
	"strings"
)

// Stock filter values. An empty or "all" filter disables the predicate.
const (
	StockFilterAll = ""
	StockFilterIn  = "in"
	StockFilterLow = "low"
	StockFilterOut = "out"
)

// Filters is the client-side filter state: a substring search, exact facet
// matches and a stock predicate. All active predicates must hold (pure
// conjunction); filtering never re-fetches.
type Filters struct {
	Search string            `json:"search,omitempty"`
	Facets map[string]string `json:"facets,omitempty"`
	Stock  string            `json:"stock,omitempty"`
}

// matches evaluates the filter conjunction for one entity.
func matches[T Entity](cfg Config[T], entity T, f Filters) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" && cfg.Search != nil {
		found := false
		for _, field := range cfg.Search(entity) {
			if strings.Contains(strings.ToLower(field), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, facet := range cfg.Facets {
		want := f.Facets[facet.Key]
		if want != "" && facet.Value(entity) != want {
			return false
		}
	}

	if cfg.Stock != nil && f.Stock != StockFilterAll && f.Stock != "all" {
		a := cfg.Stock(entity)
		switch f.Stock {
		case StockFilterIn:
			if !a.InStock() {
				return false
			}
		case StockFilterLow:
			// Screens without a low-stock band treat "low" as in-stock.
			if cfg.LowStockMax > 0 {
				if a.Count <= 0 || a.Count > cfg.LowStockMax {
					return false
				}
			} else if !a.InStock() {
				return false
			}
		case StockFilterOut:
			if a.InStock() {
				return false
			}
		}
	}

	return true
}

// applyFilters recomputes the filtered index view. Caller holds the lock.
func (c *Controller[T]) applyFilters() {
	filtered := make([]int, 0, len(c.vm.Rows))
	for i, row := range c.vm.Rows {
		if matches(c.cfg, row.Entity, c.vm.Filters) {
			filtered = append(filtered, i)
		}
	}
	c.vm.Filtered = filtered
}

// deriveOptions rebuilds the facet dropdown options: distinct non-empty
// values, ascending case-sensitive sort. Caller holds the lock.
func (c *Controller[T]) deriveOptions() {
	options := make(map[string][]string, len(c.cfg.Facets))
	for _, facet := range c.cfg.Facets {
		seen := map[string]bool{}
		var values []string
		for _, row := range c.vm.Rows {
			v := facet.Value(row.Entity)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}
		sort.Strings(values)
		options[facet.Key] = values
	}
	c.vm.Options = options
}
