package postgres

import (
	"github.com/corray333/littlelemon/internal/service/models/sortspec"
)

// OrderBy renders sort keys as ORDER BY terms using columns to map field names.
// The id column is always appended as the final tie-breaker.
func OrderBy(keys []sortspec.Key, columns map[string]string, idColumn string) []string {
	terms := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		column, ok := columns[k.Field]
		if !ok {
			continue
		}
		if k.Desc {
			terms = append(terms, column+" DESC")
		} else {
			terms = append(terms, column+" ASC")
		}
	}

	return append(terms, idColumn+" ASC")
}
