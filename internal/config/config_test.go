package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DOODL_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg := Load()

	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %q, want :8080", cfg.ListenPort)
	}
	if cfg.FetchTimeout != 8*time.Second {
		t.Errorf("FetchTimeout = %v, want 8s", cfg.FetchTimeout)
	}
	if cfg.FetchMaxBytes != 64*1024 {
		t.Errorf("FetchMaxBytes = %d, want 65536", cfg.FetchMaxBytes)
	}
	if cfg.Redis.Enabled() {
		t.Errorf("Redis.Addr = %q, want empty (memory cache)", cfg.Redis.Addr)
	}
	if cfg.DefaultTimezone != "UTC" {
		t.Errorf("DefaultTimezone = %q, want UTC", cfg.DefaultTimezone)
	}
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "DOODL_LISTEN_PORT=:9999\nDOODL_ENRICH_WORKERS=0\nDOODL_FETCH_TIMEOUT=2s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("DOODL_ENV_FILE", path)
	// already-set variables win over the file
	t.Setenv("DOODL_FETCH_TIMEOUT", "3s")
	// t.Setenv restores on cleanup; values loaded from the file must be cleared by hand
	t.Cleanup(func() {
		_ = os.Unsetenv("DOODL_LISTEN_PORT")
		_ = os.Unsetenv("DOODL_ENRICH_WORKERS")
	})

	cfg := Load()

	if cfg.ListenPort != ":9999" {
		t.Errorf("ListenPort = %q, want :9999", cfg.ListenPort)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout = %v, want 3s", cfg.FetchTimeout)
	}
	if cfg.EnrichWorkers != 1 {
		t.Errorf("EnrichWorkers = %d, want clamped to 1", cfg.EnrichWorkers)
	}
}

func TestLoadPanics(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "redis password required",
			env: map[string]string{
				"DOODL_REDIS_ADDR":              "localhost:6379",
				"DOODL_REDIS_PASSWORD_REQUIRED": "true",
			},
		},
		{
			name: "import without owner",
			env:  map[string]string{"DOODL_IMPORT_FILE": "/tmp/bookmarks.yaml"},
		},
		{
			name: "invalid default timezone",
			env:  map[string]string{"DOODL_DEFAULT_TIMEZONE": "Mars/Olympus"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DOODL_ENV_FILE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Load() should have panicked")
				}
			}()
			Load()
		})
	}
}

func TestEnvParsers(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		t.Setenv("TEST_INT", "42")
		if got := envInt("TEST_INT", 10); got != 42 {
			t.Errorf("envInt() = %d, want 42", got)
		}
		if got := envInt("TEST_INT_MISSING", 10); got != 10 {
			t.Errorf("envInt() missing = %d, want 10", got)
		}
	})

	t.Run("bool", func(t *testing.T) {
		t.Setenv("TEST_BOOL", "0")
		if got := envBool("TEST_BOOL", true); got {
			t.Errorf("envBool() = true, want false")
		}
	})

	t.Run("duration", func(t *testing.T) {
		t.Setenv("TEST_DURATION", " 5m ")
		if got := envDuration("TEST_DURATION", time.Second); got != 5*time.Minute {
			t.Errorf("envDuration() = %v, want 5m", got)
		}
	})
}

func TestEnvParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		value string
		read  func()
	}{
		{name: "int", value: "not_a_number", read: func() { envInt("TEST_BAD", 1) }},
		{name: "bool", value: "maybe", read: func() { envBool("TEST_BAD", true) }},
		{name: "duration", value: "soon", read: func() { envDuration("TEST_BAD", time.Second) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BAD", tt.value)
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("%s %q should have panicked", tt.name, tt.value)
				}
			}()
			tt.read()
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "quotes and spaces", in: ` "a.example" , 'b.example',, c `, want: []string{"a.example", "b.example", "c"}},
		{name: "cidrs", in: "10.0.0.0/8,127.0.0.1", want: []string{"10.0.0.0/8", "127.0.0.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRedactedHidesPassword(t *testing.T) {
	cfg := Config{Redis: Redis{Addr: "localhost:6379", Password: "hunter2"}}
	if got := cfg.redacted().Redis.Password; got != "***REDACTED***" {
		t.Errorf("redacted password = %q", got)
	}
	if cfg.Redis.Password != "hunter2" {
		t.Errorf("redacted() mutated the original config")
	}
}
