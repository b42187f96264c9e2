package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed clustering.yaml
var clusteringYAML []byte

type Config struct {
	Detector   DetectorConfig
	Database   DatabaseConfig
	Clustering ClusteringConfig
}

type DetectorConfig struct {
	URL string // face detection service URL (defaults to http://localhost:8000)
	Dim int    // embedding dimension the service produces (defaults to 512)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; when empty the SQLite backend is used
	SQLitePath   string // SQLite database file (default faces.db)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// ClusteringConfig carries the default clustering parameters, loaded from
// the embedded clustering.yaml. Command line flags override them per run.
type ClusteringConfig struct {
	Eps                 float64 `yaml:"eps"`
	MinSamples          int     `yaml:"min_samples"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MinSamplesNew       int     `yaml:"min_samples_new"`
	MaxIterations       int     `yaml:"max_iterations"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a fallback.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var defaults struct {
		Clustering ClusteringConfig `yaml:"clustering"`
	}
	if err := yaml.Unmarshal(clusteringYAML, &defaults); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded clustering.yaml: " + err.Error())
	}

	return &Config{
		Detector: DetectorConfig{
			URL: envString("DETECTOR_URL", "http://localhost:8000"),
			Dim: envInt("EMBEDDING_DIM", 512),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			SQLitePath:   envString("SQLITE_PATH", "faces.db"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Clustering: defaults.Clustering,
	}
}
