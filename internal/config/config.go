package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"` // Listen address (e.g. "0.0.0.0")
	Port int    `yaml:"port"` // Listen port
}

// ProcessingConfig holds the document ingestion knobs.
type ProcessingConfig struct {
	DataDir         string `yaml:"dataDir"`         // Root directory of the document corpus
	ChunkSize       int    `yaml:"chunkSize"`       // Target chunk size in characters
	ChunkOverlap    int    `yaml:"chunkOverlap"`    // Overlap between adjacent chunks
	MaxDocsPerQuery int    `yaml:"maxDocsPerQuery"` // Default top-k for retrieval
	MaxContextChars int    `yaml:"maxContextChars"` // Upper bound on the assembled context window
	PreviewChars    int    `yaml:"previewChars"`    // Source attribution preview cap
	IngestWorkers   int    `yaml:"ingestWorkers"`   // Concurrent files during directory ingestion
}

// IndexConfig describes the vector index of the collection.
type IndexConfig struct {
	IndexType  string `yaml:"indexType"`  // e.g. "IVF_FLAT", "HNSW"
	MetricType string `yaml:"metricType"` // e.g. "L2", "COSINE"
	NList      int    `yaml:"nlist"`
}

// MilvusConfig holds the connection and collection settings for Milvus.
type MilvusConfig struct {
	Address     string      `yaml:"address"`
	Collection  string      `yaml:"collection"`
	Dim         int         `yaml:"dim"`          // Embedding dimensionality
	Index       IndexConfig `yaml:"index"`
	Description string      `yaml:"description,omitempty"`
}

// RedisConfig holds the optional answer cache settings. A zero Address
// disables the cache.
type RedisConfig struct {
	Address    string `yaml:"address"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttlSeconds"`
}

// ProviderConfig configures an embedding or generation provider.
type ProviderConfig struct {
	Provider string `yaml:"provider"` // "ollama", "openai" or "gemini"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey,omitempty"`
	BaseURL  string `yaml:"baseURL,omitempty"`
}

// AppConfig is the root configuration object, constructed once at process
// start and passed to every component by injection.
type AppConfig struct {
	LogLevel   string           `yaml:"logLevel"`
	Server     ServerConfig     `yaml:"server"`
	Processing ProcessingConfig `yaml:"processing"`
	Milvus     MilvusConfig     `yaml:"milvus"`
	Redis      RedisConfig      `yaml:"redis"`
	Embedding  ProviderConfig   `yaml:"embedding"`
	LLM        ProviderConfig   `yaml:"llm"`
}

// LoadConfig reads and parses the YAML config at path, applying defaults for
// any omitted processing knobs.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills in zero-valued knobs with the defaults the rest of the
// system assumes.
func (c *AppConfig) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Processing.DataDir == "" {
		c.Processing.DataDir = "./data"
	}
	if c.Processing.ChunkSize == 0 {
		c.Processing.ChunkSize = 1000
	}
	if c.Processing.ChunkOverlap == 0 {
		c.Processing.ChunkOverlap = 200
	}
	if c.Processing.MaxDocsPerQuery == 0 {
		c.Processing.MaxDocsPerQuery = 5
	}
	if c.Processing.MaxContextChars == 0 {
		c.Processing.MaxContextChars = 12000
	}
	if c.Processing.PreviewChars == 0 {
		c.Processing.PreviewChars = 200
	}
	if c.Processing.IngestWorkers == 0 {
		c.Processing.IngestWorkers = 4
	}
	if c.Milvus.Collection == "" {
		c.Milvus.Collection = "placement_papers"
	}
	if c.Milvus.Dim == 0 {
		c.Milvus.Dim = 768
	}
	if c.Milvus.Index.IndexType == "" {
		c.Milvus.Index.IndexType = "IVF_FLAT"
	}
	if c.Milvus.Index.MetricType == "" {
		c.Milvus.Index.MetricType = "L2"
	}
	if c.Milvus.Index.NList == 0 {
		c.Milvus.Index.NList = 128
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 3600
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "ollama"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "nomic-embed-text"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "ollama"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama3"
	}
}
