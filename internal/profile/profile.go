package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/talentsense/match"
)

// Profile is configuration to start the main server.
type Profile struct {
	// Embedding configuration (OpenAI-compatible protocol)
	AIEmbeddingProvider   string
	AIEmbeddingModel      string
	AIEmbeddingAPIKey     string
	AIEmbeddingBaseURL    string
	AIEmbeddingDimensions int

	// Match pipeline tuning
	MatchTopK          int     // results returned per run
	MatchPoolSize      int     // retrieval pool width
	MatchMinSimilarity float64 // retrieval similarity floor
	MatchConcurrency   int     // per-candidate fan-out bound
	MatchHardFilter    bool    // exclude constraint failures instead of annotating

	// Server configuration
	Mode    string
	Addr    string
	Port    int
	Data    string
	Driver  string
	DSN     string
	Version string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvOrDefaultFloat returns environment variable value as float or default value.
func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.AIEmbeddingProvider = getEnvOrDefault("TALENTSENSE_AI_EMBEDDING_PROVIDER", "siliconflow")
	p.AIEmbeddingModel = getEnvOrDefault("TALENTSENSE_AI_EMBEDDING_MODEL", "BAAI/bge-m3")
	p.AIEmbeddingAPIKey = getEnvOrDefault("TALENTSENSE_AI_EMBEDDING_API_KEY", "")
	p.AIEmbeddingBaseURL = getEnvOrDefault("TALENTSENSE_AI_EMBEDDING_BASE_URL", "https://api.siliconflow.cn/v1")
	p.AIEmbeddingDimensions = getEnvOrDefaultInt("TALENTSENSE_AI_EMBEDDING_DIMENSIONS", 1024)

	p.MatchTopK = getEnvOrDefaultInt("TALENTSENSE_MATCH_TOP_K", match.DefaultTopK)
	p.MatchPoolSize = getEnvOrDefaultInt("TALENTSENSE_MATCH_POOL_SIZE", match.DefaultPoolSize)
	p.MatchMinSimilarity = getEnvOrDefaultFloat("TALENTSENSE_MATCH_MIN_SIMILARITY", match.DefaultMinSimilarity)
	p.MatchConcurrency = getEnvOrDefaultInt("TALENTSENSE_MATCH_CONCURRENCY", match.DefaultConcurrency)
	p.MatchHardFilter = getEnvOrDefault("TALENTSENSE_MATCH_HARD_FILTER", "false") == "true"
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "talentsense")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					return errors.Wrapf(err, "failed to create data directory %s", p.Data)
				}
			}
		} else {
			p.Data = "/var/opt/talentsense"
		}
	}

	if p.Driver == "sqlite" {
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("talentsense_%s.db", p.Mode))
		}
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn required for postgres driver")
	}

	if p.MatchMinSimilarity < 0 || p.MatchMinSimilarity > 1 {
		return errors.Errorf("match similarity floor out of range: %f", p.MatchMinSimilarity)
	}

	return nil
}
