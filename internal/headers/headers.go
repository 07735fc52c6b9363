// Package headers extracts column names from a loaded table and maps them to
// canonical snake_case identifiers.
package headers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	apperrors "tabprofile/internal/errors"
	"tabprofile/internal/table"
)

var (
	// matches what unicode.IsSpace accepts, not just ASCII \s
	whitespaceRun = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`)
	disallowed    = regexp.MustCompile(`[^a-z0-9_]`)
)

// Extract returns the table's column names in order
func Extract(t *table.Table) ([]string, error) {
	if t == nil {
		return nil, apperrors.NewMissingTableError()
	}
	return t.Names(), nil
}

// Canonical applies the character rules to one header: lowercase, whitespace
// runs to a single underscore, then anything outside [a-z0-9_] dropped. The
// result may be empty.
func Canonical(header string) string {
	s := strings.ToLower(header)
	s = whitespaceRun.ReplaceAllString(s, "_")
	return disallowed.ReplaceAllString(s, "")
}

// Normalize maps every header to a unique canonical name and returns the
// mapping (original header order) together with a renamed copy of t. Empty
// results become column_<index>; a name already taken gets _2, _3, ...
//
// Duplicate original headers share one mapping key, so the mapping keeps the
// name assigned to the first occurrence while the renamed table carries each
// column's own unique name.
func Normalize(t *table.Table, hdrs []string) (*orderedmap.OrderedMap[string, string], *table.Table, error) {
	if t == nil {
		return nil, nil, apperrors.NewMissingTableError()
	}
	if len(hdrs) == 0 {
		return nil, nil, apperrors.NewNormalizationError("No headers found")
	}
	if len(hdrs) != t.NumColumns() {
		return nil, nil, apperrors.NewNormalizationError(
			fmt.Sprintf("Header count mismatch: %d headers for %d columns", len(hdrs), t.NumColumns()))
	}

	names := Assign(hdrs)

	mapping := orderedmap.New[string, string](len(hdrs))
	for i, h := range hdrs {
		if _, exists := mapping.Get(h); exists {
			continue
		}
		mapping.Set(h, names[i])
	}

	renamed, err := t.Renamed(names)
	if err != nil {
		return nil, nil, apperrors.NewNormalizationError(err.Error())
	}
	return mapping, renamed, nil
}

// Assign returns one unique canonical name per header, position for position
func Assign(hdrs []string) []string {
	names := make([]string, len(hdrs))
	used := make(map[string]struct{}, len(hdrs))
	for i, h := range hdrs {
		name := Canonical(h)
		if name == "" {
			name = "column_" + strconv.Itoa(i)
		}
		if _, taken := used[name]; taken {
			base := name
			for n := 2; ; n++ {
				candidate := base + "_" + strconv.Itoa(n)
				if _, taken := used[candidate]; !taken {
					name = candidate
					break
				}
			}
		}
		used[name] = struct{}{}
		names[i] = name
	}
	return names
}
