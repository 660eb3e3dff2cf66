package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"lowercases", "OAuth2 Token REFRESH", []string{"oauth2", "token", "refresh"}},
		{"splits on punctuation", "token-refresh_flow (v2)", []string{"token", "refresh", "flow"}},
		{"drops short tokens", "go to db", nil},
		{"drops stop words", "the token and the refresh", []string{"token", "refresh"}},
		{"keeps digits", "error 4042 retry", []string{"error", "4042", "retry"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJaccard(t *testing.T) {
	a := tokenSet("oauth2 token refresh")
	b := tokenSet("token refresh race")

	// intersection {token, refresh} = 2, union {oauth2, token, refresh, race} = 4
	assert.InDelta(t, 0.5, jaccard(a, b), 1e-9)

	assert.Equal(t, 1.0, jaccard(a, a))
	assert.Equal(t, 0.0, jaccard(a, nil))
	assert.Equal(t, 0.0, jaccard(nil, b))
	assert.Equal(t, 0.0, jaccard(a, tokenSet("completely unrelated words")))
}
