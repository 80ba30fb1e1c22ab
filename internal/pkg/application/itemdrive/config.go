package itemdrive

import (
	"io"

	yaml "gopkg.in/yaml.v2"
)

const (
	BackendMemory   string = "memory"
	BackendPostgres string = "postgres"
	BackendSQLite   string = "sqlite"
)

type StorageConfig struct {
	Backend string `yaml:"backend"`
	DSN     string `yaml:"dsn"`
	Path    string `yaml:"path"`
}

type OntologyConfig struct {
	AllowExternalReferences bool     `yaml:"allowExternalReferences"`
	Seeds                   []string `yaml:"seeds"`
}

type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Ontology OntologyConfig `yaml:"ontology"`
}

func DefaultConfiguration() *Config {
	return &Config{
		Storage: StorageConfig{Backend: BackendMemory},
	}
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfiguration()
	err = yaml.Unmarshal(buf, cfg)

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendMemory
	}

	return cfg, err
}
