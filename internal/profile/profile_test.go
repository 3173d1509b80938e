package profile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TALENTSENSE_AI_EMBEDDING_PROVIDER",
		"TALENTSENSE_AI_EMBEDDING_MODEL",
		"TALENTSENSE_AI_EMBEDDING_API_KEY",
		"TALENTSENSE_AI_EMBEDDING_BASE_URL",
		"TALENTSENSE_AI_EMBEDDING_DIMENSIONS",
		"TALENTSENSE_MATCH_TOP_K",
		"TALENTSENSE_MATCH_POOL_SIZE",
		"TALENTSENSE_MATCH_MIN_SIMILARITY",
		"TALENTSENSE_MATCH_CONCURRENCY",
		"TALENTSENSE_MATCH_HARD_FILTER",
	} {
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestProfileDefaults(t *testing.T) {
	clearEnvVars(t)

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "siliconflow", p.AIEmbeddingProvider)
	assert.Equal(t, "BAAI/bge-m3", p.AIEmbeddingModel)
	assert.Equal(t, 1024, p.AIEmbeddingDimensions)
	assert.Equal(t, 10, p.MatchTopK)
	assert.Equal(t, 50, p.MatchPoolSize)
	assert.Equal(t, 0.5, p.MatchMinSimilarity)
	assert.Equal(t, 8, p.MatchConcurrency)
	assert.False(t, p.MatchHardFilter)
}

func TestProfileFromEnvOverrides(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("TALENTSENSE_MATCH_TOP_K", "25")
	t.Setenv("TALENTSENSE_MATCH_MIN_SIMILARITY", "0.7")
	t.Setenv("TALENTSENSE_MATCH_HARD_FILTER", "true")

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, 25, p.MatchTopK)
	assert.Equal(t, 0.7, p.MatchMinSimilarity)
	assert.True(t, p.MatchHardFilter)
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile *Profile
		wantErr bool
	}{
		{"postgres with dsn", &Profile{Mode: "dev", Driver: "postgres", DSN: "postgres://localhost/talentsense"}, false},
		{"postgres without dsn", &Profile{Mode: "dev", Driver: "postgres"}, true},
		{"similarity floor too high", &Profile{Mode: "dev", Driver: "postgres", DSN: "x", MatchMinSimilarity: 1.5}, true},
		{"similarity floor negative", &Profile{Mode: "dev", Driver: "postgres", DSN: "x", MatchMinSimilarity: -0.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestProfileValidateNormalizesMode(t *testing.T) {
	p := &Profile{Mode: "bogus", Driver: "postgres", DSN: "postgres://localhost/talentsense"}
	require.NoError(t, p.Validate())
	assert.Equal(t, "demo", p.Mode)
}
