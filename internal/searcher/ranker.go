package searcher

import (
	"sort"
	"time"
)

// Boost pass constants. Like the scorer bonuses these are tunable
// ranking-quality parameters.
const (
	recencyBoostMax      = 0.10
	recencyWindow        = 30 * 24 * time.Hour
	completenessBoostMax = 0.10
	completenessFloor    = 0.80
)

// rank applies the boost passes in fixed order and performs the final
// deterministic sort. Scores only move upward and never past 1.0.
//
// Pass order: recency, completeness, popularity (reserved). Ordering happens
// once, after all passes: descending adjusted score, ties broken by
// ascending entity id.
func rank(candidates []scoredCandidate) {
	if len(candidates) == 0 {
		return
	}

	applyRecencyBoost(candidates)
	applyCompletenessBoost(candidates)
	applyPopularityBoost(candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].entity.ID < candidates[j].entity.ID
	})
}

// applyRecencyBoost rewards recently updated entities with up to +10%,
// relative to the newest candidate in the current result set, linearly
// decaying to zero at 30 days older.
func applyRecencyBoost(candidates []scoredCandidate) {
	var newest time.Time
	for i := range candidates {
		if t := lastActivity(candidates[i].entity.UpdatedAt, candidates[i].entity.CreatedAt); t.After(newest) {
			newest = t
		}
	}
	if newest.IsZero() {
		return
	}

	for i := range candidates {
		age := newest.Sub(lastActivity(candidates[i].entity.UpdatedAt, candidates[i].entity.CreatedAt))
		if age < 0 || age >= recencyWindow {
			continue
		}
		boost := recencyBoostMax * (1 - float64(age)/float64(recencyWindow))
		candidates[i].score = clampScore(candidates[i].score * (1 + boost))
	}
}

// lastActivity prefers the update timestamp, falling back to creation
func lastActivity(updated, created time.Time) time.Time {
	if !updated.IsZero() {
		return updated
	}
	return created
}

// applyCompletenessBoost rewards entities whose presence fraction over
// {title, content, tags, metadata} exceeds 80%, up to +10% proportional to
// the excess.
func applyCompletenessBoost(candidates []scoredCandidate) {
	for i := range candidates {
		e := candidates[i].entity

		present := 0
		if e.Title != "" {
			present++
		}
		if e.Content != "" {
			present++
		}
		if len(e.Tags) > 0 {
			present++
		}
		if len(e.Metadata) > 0 {
			present++
		}

		fraction := float64(present) / 4.0
		if fraction <= completenessFloor {
			continue
		}
		boost := completenessBoostMax * (fraction - completenessFloor) / (1 - completenessFloor)
		candidates[i].score = clampScore(candidates[i].score * (1 + boost))
	}
}

// applyPopularityBoost is a reserved extension point. A future signal
// (access counts, link references) can plug in here without changing the
// pass order.
func applyPopularityBoost(candidates []scoredCandidate) {
	// Identity for now
	_ = candidates
}
