package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsentinel/internal/auth"
	"github.com/anstrom/netsentinel/internal/config"
	"github.com/anstrom/netsentinel/internal/db"
	"github.com/anstrom/netsentinel/internal/models"
)

// resetViper isolates a test from the global viper state.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	oldCfgFile := cfgFile
	t.Cleanup(func() {
		viper.Reset()
		cfgFile = oldCfgFile
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGetConfigFilePath(t *testing.T) {
	tests := []struct {
		name           string
		viperConfigSet string
		expectedResult string
	}{
		{name: "returns default when no config file set", expectedResult: "config.yaml"},
		{
			name:           "returns viper config file when set",
			viperConfigSet: "/etc/netsentinel/config.yaml",
			expectedResult: "/etc/netsentinel/config.yaml",
		},
		{
			name:           "returns relative path unchanged",
			viperConfigSet: "custom-config.yaml",
			expectedResult: "custom-config.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			if tt.viperConfigSet != "" {
				viper.SetConfigFile(tt.viperConfigSet)
			}
			assert.Equal(t, tt.expectedResult, getConfigFilePath())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("file values", func(t *testing.T) {
		resetViper(t)
		cfgFile = writeConfig(t, `
scanning:
  network: 192.168.50.0/24
api:
  port: 8100
`)
		initConfig()

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "192.168.50.0/24", cfg.Scanning.Network)
		assert.Equal(t, 8100, cfg.API.Port)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		resetViper(t)
		cfgFile = writeConfig(t, "api:\n  port: 8100\n")
		t.Setenv("NETSENTINEL_API_PORT", "9100")
		t.Setenv("NETSENTINEL_SCANNING_NETWORK", "10.1.0.0/24")
		initConfig()

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, 9100, cfg.API.Port)
		assert.Equal(t, "10.1.0.0/24", cfg.Scanning.Network)
	})

	t.Run("invalid override is rejected", func(t *testing.T) {
		resetViper(t)
		cfgFile = writeConfig(t, "")
		t.Setenv("NETSENTINEL_SCANNING_NETWORK", "not-a-cidr")
		initConfig()

		_, err := loadConfig()
		assert.Error(t, err)
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		resetViper(t)
		cfgFile = filepath.Join(t.TempDir(), "absent.yaml")
		initConfig()

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, config.Default().API.Port, cfg.API.Port)
	})
}

func TestApplyOverrides(t *testing.T) {
	v := viper.New()
	v.Set("api.port", 9000)
	v.Set("database.driver", db.DriverPostgres)
	v.Set("notify.discord.webhook_url", "")
	v.Set("daemon.scan_on_startup", true)

	cfg := config.Default()
	cfg.Notify.Discord.WebhookURL = "https://discord.com/api/webhooks/1/keep"
	applyOverrides(cfg, v)

	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, db.DriverPostgres, cfg.Database.Driver)
	assert.True(t, cfg.Daemon.ScanOnStartup)
	assert.Equal(t, "https://discord.com/api/webhooks/1/keep", cfg.Notify.Discord.WebhookURL,
		"empty values do not clear the file setting")
}

func TestParsePorts(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []int
		wantErr bool
	}{
		{name: "single", spec: "22", want: []int{22}},
		{name: "list", spec: "22, 80,443", want: []int{22, 80, 443}},
		{name: "range", spec: "8000-8003", want: []int{8000, 8001, 8002, 8003}},
		{name: "duplicates removed", spec: "80,79-81,80", want: []int{80, 79, 81}},
		{name: "trailing comma", spec: "22,", want: []int{22}},
		{name: "empty", spec: " , ", wantErr: true},
		{name: "zero", spec: "0", wantErr: true},
		{name: "too large", spec: "65536", wantErr: true},
		{name: "reversed range", spec: "90-80", wantErr: true},
		{name: "garbage", spec: "ssh", wantErr: true},
		{name: "bad range end", spec: "80-x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePorts(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateOutput(t *testing.T) {
	assert.NoError(t, validateOutput(outputTable))
	assert.NoError(t, validateOutput(outputJSON))
	assert.Error(t, validateOutput("yaml"))
}

func fixtureSnapshot() *models.Snapshot {
	s := models.NewSnapshot("192.168.1.0/24", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), []models.Device{
		{
			IP:       "192.168.1.10",
			MAC:      "00:11:32:aa:bb:cc",
			Hostname: models.StringPtr("nas.lan"),
			Vendor:   "Synology",
			Ports:    []models.Port{{Port: 22, Service: "SSH"}, {Port: 445, Service: "SMB"}},
			Risk:     models.RiskAssessment{Score: 45, Level: models.RiskMedium},
		},
		{
			IP:   "192.168.1.20",
			MAC:  "de:ad:be:ef:00:01",
			Risk: models.RiskAssessment{Score: 10, Level: models.RiskLow},
		},
	})
	s.ID = 3
	return s
}

func TestRenderSnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderSnapshot(&buf, fixtureSnapshot()))

	out := buf.String()
	assert.Contains(t, out, "Scan #3 of 192.168.1.0/24")
	assert.Contains(t, out, "2 devices")
	assert.Contains(t, out, "MEDIUM 1")
	assert.Contains(t, out, "nas.lan")
	assert.Contains(t, out, "22/SSH")
	assert.Contains(t, out, "445/SMB")
	assert.Contains(t, out, "192.168.1.20")
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderHistory(&buf, nil))
	assert.Equal(t, "No scans recorded.\n", buf.String())

	buf.Reset()
	require.NoError(t, renderHistory(&buf, []models.HistoryEntry{fixtureSnapshot().Summary()}))
	assert.Contains(t, buf.String(), "192.168.1.0/24")
}

func TestRenderAlerts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderAlerts(&buf, []models.Alert{}))
	assert.Equal(t, "No alerts.\n", buf.String())

	buf.Reset()
	require.NoError(t, renderAlerts(&buf, []models.Alert{{
		ID:        9,
		ScanID:    3,
		DeviceIP:  "192.168.1.10",
		AlertType: models.AlertNewDevice,
		Severity:  models.SeverityMedium,
		Message:   "New device detected",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}))
	out := buf.String()
	assert.Contains(t, out, "NEW_DEVICE")
	assert.Contains(t, out, "192.168.1.10")
}

func TestFormatPorts(t *testing.T) {
	assert.Equal(t, "-", formatPorts(nil))
	assert.Equal(t, "80/HTTP", formatPorts([]models.Port{{Port: 80, Service: "HTTP"}}))
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.4.0", "abc123", "2026-03-01")
	t.Cleanup(func() { SetVersion("dev", "none", "unknown") })

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	assert.Equal(t, "netsentinel 1.4.0 (commit: abc123, built: 2026-03-01)\n", buf.String())
	assert.Equal(t, getVersion(), rootCmd.Version)
}

func TestAPIKeysGenerate(t *testing.T) {
	apiKeyName, apiKeyOutput = "Dashboard", outputJSON
	t.Cleanup(func() { apiKeyName, apiKeyOutput = "", outputTable })

	var buf bytes.Buffer
	apiKeysGenerateCmd.SetOut(&buf)
	require.NoError(t, runAPIKeysGenerate(apiKeysGenerateCmd, nil))

	var key auth.GeneratedAPIKey
	require.NoError(t, json.Unmarshal(buf.Bytes(), &key))
	assert.Equal(t, "Dashboard", key.Name)
	assert.True(t, auth.IsValidAPIKeyFormat(key.Key))
	assert.True(t, auth.ValidateAPIKey(key.Key, key.Hash))
}

func TestDisplayGeneratedKey(t *testing.T) {
	key := &auth.GeneratedAPIKey{
		Name:      "CLI",
		Key:       "ns_displaytestkey000001",
		Hash:      "$2a$12$examplehash",
		KeyPrefix: "ns_displayt...",
		CreatedAt: time.Now(),
	}

	var buf bytes.Buffer
	require.NoError(t, displayGeneratedKey(&buf, key))
	out := buf.String()
	assert.Contains(t, out, key.Key)
	assert.Contains(t, out, `- "$2a$12$examplehash"`)
}

func TestAPIKeysHash(t *testing.T) {
	var buf bytes.Buffer
	apiKeysHashCmd.SetOut(&buf)

	const key = "ns_hashcommandtestkey01"
	require.NoError(t, runAPIKeysHash(apiKeysHashCmd, []string{key}))
	assert.True(t, auth.ValidateAPIKey(key, string(bytes.TrimSpace(buf.Bytes()))))

	assert.Error(t, runAPIKeysHash(apiKeysHashCmd, []string{"not-a-key"}))
}

func TestMigrateReset_RequiresForce(t *testing.T) {
	migrateForce = false
	err := migrateResetCmd.RunE(migrateResetCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	resetViper(t)
	cfgFile = writeConfig(t, "database:\n  driver: memory\n")
	initConfig()

	err := migrateStatusCmd.RunE(migrateStatusCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestHistoryList_MemoryStore(t *testing.T) {
	resetViper(t)
	cfgFile = writeConfig(t, "database:\n  driver: memory\n")
	initConfig()
	historyOutput = outputTable

	var buf bytes.Buffer
	historyCmd.SetOut(&buf)
	require.NoError(t, runHistoryList(historyCmd, nil))
	assert.Contains(t, buf.String(), "No scans recorded.")
}

func TestHistoryShow_InvalidID(t *testing.T) {
	historyOutput = outputTable
	assert.Error(t, runHistoryShow(historyShowCmd, []string{"abc"}))
	assert.Error(t, runHistoryShow(historyShowCmd, []string{"0"}))
}

func TestCommandTree(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"server", "scan", "history", "alerts", "apikeys", "migrate", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
