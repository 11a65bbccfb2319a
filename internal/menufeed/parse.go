// Package menufeed loads the published cafeteria calendar from a file or URL
// and keeps the stored menu in sync with it.
package menufeed

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"corpintranet/portal/internal/domain"
)

// Format is the encoding of a feed document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrUnknownFormat = errors.New("unknown menu feed format")
	ErrInvalidFeed   = errors.New("invalid menu feed")
)

// brazilianLayout is how the kitchen spreadsheet exports dates.
const brazilianLayout = "02/01/2006"

// entry accepts both the English and the Portuguese keys used upstream.
type entry struct {
	Date     string `json:"date" yaml:"date"`
	Data     string `json:"data" yaml:"data"`
	Protein  string `json:"protein" yaml:"protein"`
	Proteina string `json:"proteina" yaml:"proteina"`
}

func (e entry) date() string {
	if e.Date != "" {
		return e.Date
	}
	return e.Data
}

func (e entry) protein() string {
	if e.Protein != "" {
		return e.Protein
	}
	return e.Proteina
}

// FormatFromName picks the format from a file name or URL path extension.
func FormatFromName(name string) (Format, error) {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON, nil
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Parse decodes a feed document into menu days. Every bad entry is reported,
// not just the first, so the kitchen can fix the sheet in one pass.
func Parse(data []byte, format Format) ([]domain.MenuDay, error) {
	var entries []entry
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &entries)
	case FormatYAML:
		err = yaml.Unmarshal(data, &entries)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeed, err)
	}

	days := make([]domain.MenuDay, 0, len(entries))
	seen := make(map[domain.Date]int, len(entries))
	var problems []error
	for i, e := range entries {
		date, err := ParseFeedDate(e.date())
		if err != nil {
			problems = append(problems, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		protein := strings.TrimSpace(e.protein())
		if protein == "" {
			problems = append(problems, fmt.Errorf("entry %d (%s): missing protein", i, date))
			continue
		}
		if first, dup := seen[date]; dup {
			problems = append(problems, fmt.Errorf("entry %d: date %s already listed at entry %d", i, date, first))
			continue
		}
		seen[date] = i
		days = append(days, domain.MenuDay{Date: date, DefaultProtein: protein})
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFeed, errors.Join(problems...))
	}
	return days, nil
}

// ParseFeedDate accepts YYYY-MM-DD or DD/MM/YYYY.
func ParseFeedDate(raw string) (domain.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Date{}, errors.New("missing date")
	}
	if d, err := domain.ParseDate(raw); err == nil {
		return d, nil
	}
	t, err := time.Parse(brazilianLayout, raw)
	if err != nil {
		return domain.Date{}, fmt.Errorf("unrecognized date %q", raw)
	}
	return domain.DateOf(t), nil
}
