package itemdrive

import (
	"bytes"
	"testing"

	"github.com/matryer/is"
)

func TestLoadConfig(t *testing.T) {
	is, config := setupConfigTest(t, configFile)

	is.Equal(config.Storage.Backend, BackendSQLite)
	is.Equal(config.Storage.Path, "/var/lib/item-drive/drive.db")
}

func TestLoadOntologyConfig(t *testing.T) {
	is, config := setupConfigTest(t, configFile)

	is.True(config.Ontology.AllowExternalReferences)
	is.Equal(len(config.Ontology.Seeds), 2) // should find two seed documents
	is.Equal(config.Ontology.Seeds[0], "/opt/diwise/config/schemaorg.jsonld")
}

func TestEmptyConfigUsesDefaults(t *testing.T) {
	is, config := setupConfigTest(t, "")

	is.Equal(config.Storage.Backend, BackendMemory)
	is.True(!config.Ontology.AllowExternalReferences)
	is.Equal(len(config.Ontology.Seeds), 0)
}

func TestInvalidConfigFails(t *testing.T) {
	is := is.New(t)

	_, err := LoadConfiguration(bytes.NewBufferString("storage: [unbalanced"))

	is.True(err != nil)
}

func setupConfigTest(t *testing.T, data string) (*is.I, *Config) {
	is := is.New(t)
	cfgData := bytes.NewBuffer([]byte(data))
	config, err := LoadConfiguration(cfgData)
	is.NoErr(err)

	return is, config
}

var configFile string = `
storage:
  backend: sqlite
  path: /var/lib/item-drive/drive.db
ontology:
  allowExternalReferences: true
  seeds:
  - /opt/diwise/config/schemaorg.jsonld
  - /opt/diwise/config/local.jsonld
`
