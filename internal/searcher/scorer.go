package searcher

import (
	"sort"
	"strings"

	"github.com/workdex/workdex-mcp/pkg/types"
)

// Scorable field names
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldContent     = "content"
	FieldTags        = "tags"
	FieldMetadata    = "metadata"
)

// Multi-field bonus: +5% per additional matching field, capped at +20%.
// Tunable ranking-quality parameters, not correctness invariants.
const (
	multiFieldBonus    = 0.05
	multiFieldBonusCap = 0.20
)

// defaultFieldBoosts returns the default per-field weight map
func defaultFieldBoosts() map[string]float64 {
	return map[string]float64{
		FieldTitle:       2.0,
		FieldDescription: 1.5,
		FieldContent:     1.0,
		FieldTags:        1.2,
		FieldMetadata:    0.8,
	}
}

// field pairs a scorable field name with its extracted text
type field struct {
	name string
	text string
}

// scorableFields extracts the entity's text fields in a fixed order. The
// description field is sourced from metadata, where summaries and work items
// keep their abstract; remaining metadata values score as one combined field.
func scorableFields(entity *types.Entity) []field {
	fields := []field{
		{FieldTitle, entity.Title},
		{FieldContent, entity.Content},
		{FieldTags, strings.Join(entity.Tags, " ")},
	}

	var description string
	var rest []string
	if len(entity.Metadata) > 0 {
		keys := make([]string, 0, len(entity.Metadata))
		for k := range entity.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch k {
			case "description", "summary":
				if description == "" {
					description = entity.Metadata[k]
				}
			default:
				rest = append(rest, entity.Metadata[k])
			}
		}
	}
	fields = append(fields,
		field{FieldDescription, description},
		field{FieldMetadata, strings.Join(rest, " ")},
	)

	return fields
}

// scoreEntity computes a normalized relevance score in [0, 1] for an entity
// against the query text, and reports which fields matched.
//
// Per field: an exact (case-insensitive unless caseSensitive) substring match
// of the whole query scores 1.0; otherwise Jaccard similarity between the
// tokenized query and tokenized field. The weighted maximum is the base,
// raised by the multi-field bonus and clamped to [0, 1].
func scoreEntity(queryText string, entity *types.Entity, boosts map[string]float64, caseSensitive, exactOnly bool) (float64, []string) {
	needle := queryText
	if !caseSensitive {
		needle = strings.ToLower(queryText)
	}
	queryTokens := tokenSet(queryText)

	var base float64
	var matched []string

	for _, f := range scorableFields(entity) {
		if f.text == "" {
			continue
		}

		score := fieldMatch(needle, f.text, queryTokens, caseSensitive, exactOnly)
		if score <= 0 {
			continue
		}

		matched = append(matched, f.name)
		weighted := score * fieldBoost(boosts, f.name)
		if weighted > base {
			base = weighted
		}
	}

	if base == 0 {
		return 0, nil
	}

	// Each matching field beyond the first adds a small cumulative bonus
	bonus := multiFieldBonus * float64(len(matched)-1)
	if bonus > multiFieldBonusCap {
		bonus = multiFieldBonusCap
	}

	return clampScore(base * (1 + bonus)), matched
}

// fieldMatch scores a single field against the query
func fieldMatch(needle, text string, queryTokens map[string]struct{}, caseSensitive, exactOnly bool) float64 {
	haystack := text
	if !caseSensitive {
		haystack = strings.ToLower(text)
	}
	if strings.Contains(haystack, needle) {
		return 1.0
	}
	if exactOnly {
		return 0
	}
	return jaccard(queryTokens, tokenSet(text))
}

// fieldBoost looks up a field weight, falling back to the defaults
func fieldBoost(boosts map[string]float64, name string) float64 {
	if w, ok := boosts[name]; ok && w > 0 {
		return w
	}
	if w, ok := defaultFieldBoosts()[name]; ok {
		return w
	}
	return 1.0
}

// clampScore bounds a score to [0, 1]
func clampScore(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}
