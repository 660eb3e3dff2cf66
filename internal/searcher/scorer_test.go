package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workdex/workdex-mcp/pkg/types"
)

func scoringEntity() *types.Entity {
	return &types.Entity{
		ID:         "task-1",
		EntityType: types.EntityTask,
		Title:      "Fix OAuth2 token refresh race",
		Content:    "The refresh path double-fires under concurrent requests",
		Tags:       []string{"auth", "bug"},
		Metadata:   map[string]string{"description": "token refresh regression", "sprint": "42"},
	}
}

func TestScoreEntity_ExactTitleMatch(t *testing.T) {
	score, matched := scoreEntity("token refresh", scoringEntity(), defaultFieldBoosts(), false, false)

	// Exact substring in title (weight 2.0) saturates the clamp
	assert.Equal(t, 1.0, score)
	assert.Contains(t, matched, FieldTitle)
	assert.Contains(t, matched, FieldDescription)
}

func TestScoreEntity_NoMatch(t *testing.T) {
	score, matched := scoreEntity("kubernetes ingress", scoringEntity(), defaultFieldBoosts(), false, false)
	assert.Equal(t, 0.0, score)
	assert.Nil(t, matched)
}

func TestScoreEntity_JaccardPartialMatch(t *testing.T) {
	entity := &types.Entity{
		ID:         "doc-1",
		EntityType: types.EntityDocument,
		Content:    "token rotation policy",
	}

	// No exact substring; tokens {policy, token} vs {token, rotation, policy}
	// = 2/3, weighted by the content boost 1.0, single field so no bonus
	score, matched := scoreEntity("policy token", entity, defaultFieldBoosts(), false, false)
	assert.InDelta(t, 2.0/3.0, score, 1e-9)
	assert.Equal(t, []string{FieldContent}, matched)
}

func TestScoreEntity_MultiFieldBonus(t *testing.T) {
	entity := &types.Entity{
		ID:         "doc-1",
		EntityType: types.EntityDocument,
		Content:    "budget planning for token usage",
		Metadata:   map[string]string{"note": "token overflow"},
	}

	single := &types.Entity{
		ID:         "doc-2",
		EntityType: types.EntityDocument,
		Content:    "budget planning for token usage",
	}

	multi, _ := scoreEntity("token budget", entity, defaultFieldBoosts(), false, false)
	one, _ := scoreEntity("token budget", single, defaultFieldBoosts(), false, false)
	assert.Greater(t, multi, one, "additional matching fields must raise the score")
	assert.LessOrEqual(t, multi, 1.0)
}

func TestScoreEntity_ExactOnly(t *testing.T) {
	entity := &types.Entity{
		ID:         "doc-1",
		EntityType: types.EntityDocument,
		Title:      "token rotation policy",
	}

	// Partial token overlap does not count in exact-only mode
	score, matched := scoreEntity("token refresh", entity, defaultFieldBoosts(), false, true)
	assert.Equal(t, 0.0, score)
	assert.Nil(t, matched)

	score, _ = scoreEntity("rotation policy", entity, defaultFieldBoosts(), false, true)
	assert.Equal(t, 1.0, score)
}

func TestScoreEntity_CaseSensitive(t *testing.T) {
	entity := &types.Entity{
		ID:         "doc-1",
		EntityType: types.EntityDocument,
		Title:      "OAuth2 Provider Setup",
	}

	score, _ := scoreEntity("oauth2 provider", entity, defaultFieldBoosts(), true, true)
	assert.Equal(t, 0.0, score, "case mismatch must not match when case sensitive")

	score, _ = scoreEntity("OAuth2 Provider", entity, defaultFieldBoosts(), true, true)
	assert.Equal(t, 1.0, score)
}

func TestScoreEntity_CustomBoosts(t *testing.T) {
	entity := &types.Entity{
		ID:         "doc-1",
		EntityType: types.EntityDocument,
		Title:      "token rotation policy",
	}

	// Dropping the title weight scales the Jaccard-based score down
	boosts := map[string]float64{FieldTitle: 0.5}
	score, _ := scoreEntity("policy token", entity, boosts, false, false)
	assert.InDelta(t, 1.0/3.0, score, 1e-9)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 1.0, clampScore(1.7))
	assert.Equal(t, 0.0, clampScore(-0.2))
	assert.Equal(t, 0.42, clampScore(0.42))
}
