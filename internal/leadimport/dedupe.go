package leadimport

import (
	"strings"

	"github.com/skillang/leadg-crm/internal/domain"
)

// Deduplicate keeps the first lead per distinct email (case-insensitive)
// and drops every later duplicate, preserving the original order of the
// survivors. Returns the survivors and the number removed.
func Deduplicate(leads []domain.Lead) ([]domain.Lead, int) {
	seen := make(map[string]bool, len(leads))
	survivors := leads[:0:0]
	removed := 0

	for _, lead := range leads {
		key := strings.ToLower(lead.Email)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		survivors = append(survivors, lead)
	}
	return survivors, removed
}
