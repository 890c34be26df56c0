package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWith(Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultEnvironment, cfg.App.Environment)
	assert.Equal(t, DefaultCustomMessage, cfg.App.CustomMessage)
	assert.Equal(t, DefaultDBHost, cfg.DB.Host)
	assert.Equal(t, DefaultDBPort, cfg.DB.Port)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.Timeout.Read)
	assert.Equal(t, 3*time.Second, cfg.Server.Timeout.ReadHeader)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.URL)
	assert.True(t, cfg.Console.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Security.Session.TTL)
	assert.Equal(t, "product_events", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.BrokerList())
	assert.Equal(t, "products", cfg.Elasticsearch.Index)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_ENVIRONMENT", "teste")
	t.Setenv("APP_CUSTOMMESSAGE", "Mensagem de Teste")
	t.Setenv("DB_HOST", "mock_db_host")
	t.Setenv("DB_PORT", "9999")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SECURITY_SESSION_TTL", "5m")

	cfg, err := LoadWith(Options{})
	require.NoError(t, err)

	assert.Equal(t, "teste", cfg.App.Environment)
	assert.Equal(t, "Mensagem de Teste", cfg.App.CustomMessage)
	assert.Equal(t, "mock_db_host", cfg.DB.Host)
	assert.Equal(t, "9999", cfg.DB.Port)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.BrokerList())
	assert.Equal(t, 5*time.Minute, cfg.Security.Session.TTL)
}

func TestLoad_FilesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "application.yaml")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(yamlPath, []byte(`
app:
  environment: from_yaml
  customMessage: yaml message
log:
  level: warn
`), 0o600))
	require.NoError(t, os.WriteFile(envPath, []byte("LOG_LEVEL=debug\nDB_HOST=from_dotenv\n"), 0o600))
	t.Setenv("APP_ENVIRONMENT", "from_env")

	cfg, err := LoadWith(Options{YAMLFile: yamlPath, EnvFile: envPath})
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.App.Environment)
	assert.Equal(t, "yaml message", cfg.App.CustomMessage)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "from_dotenv", cfg.DB.Host)
}

func TestLoad_MissingFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadWith(Options{
		YAMLFile: filepath.Join(dir, "nope.yaml"),
		EnvFile:  filepath.Join(dir, "nope.env"),
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultEnvironment, cfg.App.Environment)
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := LoadWith(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestEnvKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "app.custommessage", envKey("APP_CUSTOMMESSAGE"))
	assert.Equal(t, "server.timeout.readheader", envKey("SERVER_TIMEOUT_READHEADER"))
	assert.Empty(t, envKey("PATH"))
	assert.Empty(t, envKey("DB"))
	assert.Empty(t, envKey("HOME_DIR"))
}

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a", "b"}, CSV(" a, ,b "))
}

func TestMaskURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<not configured>", MaskURL(""))
	assert.Equal(t, "****@db:5432/shop", MaskURL("postgres://u:p@db:5432/shop"))
	assert.Equal(t, ":memory:", MaskURL(":memory:"))
}
