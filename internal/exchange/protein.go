package exchange

import (
	"strings"

	"corpintranet/portal/internal/domain"
)

// proteinMarkers is checked in order; the first marker found wins.
var proteinMarkers = []struct {
	marker  string
	protein domain.Protein
}{
	{"frango", domain.ProteinFrango},
	{"omelete", domain.ProteinOmelete},
	{"frito", domain.ProteinOvoFrito},
	{"cozid", domain.ProteinOvoCozido},
}

// NormalizeProtein maps free-form menu text ("Frango grelhado", "OVO COZIDO")
// to a Protein label. Unrecognized text, including blank text, yields "".
func NormalizeProtein(raw string) domain.Protein {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return ""
	}
	for _, m := range proteinMarkers {
		if strings.Contains(text, m.marker) {
			return m.protein
		}
	}
	return ""
}
