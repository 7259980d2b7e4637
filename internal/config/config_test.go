package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		wantPanic bool
	}{
		{
			name:  "variable set",
			key:   "LAUNCHPAD_TEST_VAR",
			value: "test_value",
		},
		{
			name:      "variable not set",
			key:       "LAUNCHPAD_TEST_VAR_MISSING",
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestLoadStorageBackend(t *testing.T) {
	tests := []struct {
		name      string
		storage   string
		redisAddr string
		want      string
		wantPanic bool
	}{
		{name: "default is sqlite", want: StorageSQLite},
		{name: "memory", storage: "memory", want: StorageMemory},
		{name: "case insensitive", storage: "SQLite", want: StorageSQLite},
		{name: "redis with address", storage: "redis", redisAddr: "localhost:6379", want: StorageRedis},
		{name: "redis without address", storage: "redis", wantPanic: true},
		{name: "unknown backend", storage: "etcd", wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LAUNCHPAD_STORAGE", tt.storage)
			t.Setenv("LAUNCHPAD_REDIS_ADDR", tt.redisAddr)

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("Load() should have panicked")
					}
				}()
			}

			cfg := Load()
			if !tt.wantPanic && cfg.Storage != tt.want {
				t.Errorf("Load().Storage = %v, want %v", cfg.Storage, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LAUNCHPAD_STORAGE", "")
	t.Setenv("LAUNCHPAD_DEFAULT_VOLUME", "250")
	t.Setenv("LAUNCHPAD_IMPORT_FILES", "/data/bookmarks.yaml, '/data/services.yaml'")
	t.Setenv("LAUNCHPAD_HOST_BRIDGE_URL", "http://127.0.0.1:9000/")

	cfg := Load()

	if cfg.DefaultVolume != 100 {
		t.Errorf("DefaultVolume = %d, want 100 (clamped)", cfg.DefaultVolume)
	}
	if len(cfg.ImportFiles) != 2 || cfg.ImportFiles[1] != "/data/services.yaml" {
		t.Errorf("ImportFiles = %v", cfg.ImportFiles)
	}
	if cfg.HostBridgeURL != "http://127.0.0.1:9000" {
		t.Errorf("HostBridgeURL = %q, want trailing slash trimmed", cfg.HostBridgeURL)
	}
	if cfg.MigrationLockTTL != 30*time.Second {
		t.Errorf("MigrationLockTTL = %v, want 30s", cfg.MigrationLockTTL)
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "LAUNCHPAD_TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "LAUNCHPAD_TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "LAUNCHPAD_TEST_DURATION_MISSING",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", value: "true", def: false, expected: true},
		{name: "false value", value: "false", def: true, expected: false},
		{name: "invalid value uses default", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LAUNCHPAD_TEST_BOOL", tt.value)

			result := mustBool("LAUNCHPAD_TEST_BOOL", tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "single", input: "a", expected: []string{"a"}},
		{name: "spaces and quotes", input: ` "a" , 'b',, c `, expected: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitAndTrim() = %v, want %v", result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launchpad.yaml")
	yaml := `listen_port: ":9090"
storage: memory
default_volume: 40
import_files:
  - /data/bookmarks.yaml
  - /data/services.yaml
redis_dial_timeout: 7s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LAUNCHPAD_CONFIG", path)
	t.Setenv("LAUNCHPAD_STORAGE", "")
	t.Setenv("LAUNCHPAD_DEFAULT_VOLUME", "55")

	cfg := Load()

	if cfg.ListenPort != ":9090" {
		t.Errorf("ListenPort = %q, want :9090", cfg.ListenPort)
	}
	if cfg.Storage != StorageMemory {
		t.Errorf("Storage = %q, want memory", cfg.Storage)
	}
	if cfg.DefaultVolume != 55 {
		t.Errorf("DefaultVolume = %d, want the environment to win", cfg.DefaultVolume)
	}
	if len(cfg.ImportFiles) != 2 || cfg.ImportFiles[0] != "/data/bookmarks.yaml" {
		t.Errorf("ImportFiles = %v", cfg.ImportFiles)
	}
	if cfg.RedisDT != 7*time.Second {
		t.Errorf("RedisDT = %v, want 7s", cfg.RedisDT)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("LAUNCHPAD_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Load() should have panicked")
		}
	}()
	Load()
}
