package domain

import "sort"

// KnownProducts is the canonical display order of fuel products. Products
// not listed here sort after all known ones, alphabetically.
var KnownProducts = []string{
	"Gasolina Comum",
	"Gasolina Aditivada",
	"Etanol",
	"Diesel S10",
	"Diesel S500",
	"GNV",
}

// productRank maps known product names to their canonical position.
var productRank = func() map[string]int {
	m := make(map[string]int, len(KnownProducts))
	for i, p := range KnownProducts {
		m[p] = i
	}
	return m
}()

// ProductLess is the stable comparator behind canonical product ordering.
func ProductLess(a, b string) bool {
	ra, aKnown := productRank[a]
	rb, bKnown := productRank[b]
	switch {
	case aKnown && bKnown:
		return ra < rb
	case aKnown:
		return true
	case bKnown:
		return false
	default:
		return a < b
	}
}

// SortProducts orders product names in place: known products first in
// canonical order, unknown ones after, alphabetically.
func SortProducts(products []string) {
	sort.SliceStable(products, func(i, j int) bool {
		return ProductLess(products[i], products[j])
	})
}
