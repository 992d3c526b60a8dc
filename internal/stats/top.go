// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/digita/internal/model"
)

// TopKinds returns the n most frequent error kinds. Ties keep report order.
func TopKinds(summary map[model.ErrorKind]int, n int) []model.ErrorKind {
	if n <= 0 {
		return nil
	}
	kinds := make([]model.ErrorKind, len(model.ErrorKinds))
	copy(kinds, model.ErrorKinds)
	sort.SliceStable(kinds, func(i, j int) bool {
		return summary[kinds[i]] > summary[kinds[j]]
	})
	if n > len(kinds) {
		n = len(kinds)
	}
	return kinds[:n]
}
