package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadReportsEveryMissingVar(t *testing.T) {
	for _, k := range []string{"DB_USER", "DB_HOST", "DB_NAME", "TICKET_SECRET"} {
		t.Setenv(k, "")
	}
	_, err := Load()
	if err == nil {
		t.Fatal("Load() = nil with required vars missing")
	}
	for _, k := range []string{"DB_USER", "DB_HOST", "DB_NAME", "TICKET_SECRET"} {
		if !strings.Contains(err.Error(), k) {
			t.Fatalf("error %q does not mention %s", err, k)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "cinema")
	t.Setenv("TICKET_SECRET", "s3cret")
	t.Setenv("APP_PORT", "")
	t.Setenv("TICKET_TTL_HOURS", "")
	t.Setenv("RABBITMQ_URL", "amqp://broker/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPort != "3306" || cfg.TicketTTLHours != 72 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.RabbitURL != "amqp://broker/" {
		t.Fatalf("RabbitURL = %q", cfg.RabbitURL)
	}
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "cinema")
	t.Setenv("TICKET_SECRET", "s3cret")
	t.Setenv("TICKET_TTL_HOURS", "soon")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "TICKET_TTL_HOURS") {
		t.Fatalf("Load() = %v, want TICKET_TTL_HOURS error", err)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Fatalf("Capacity = %d, want 1", cfg.Capacity)
	}
	if cfg.TTL != 5*time.Second {
		t.Fatalf("TTL = %v, want 5s", cfg.TTL)
	}
	if !cfg.MemoryFallback {
		t.Fatal("MemoryFallback off by default")
	}
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "bogus")
	cfg := LoadCacheConfig()
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] {
		t.Fatalf("Methods = %v", cfg.Methods)
	}
	if cfg.TTL != time.Second {
		t.Fatalf("TTL = %v, want fallback 1s", cfg.TTL)
	}
}

func newClientFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("checkout", pflag.ContinueOnError)
	ClientFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return fs
}

func TestLoadClientConfigFromFlags(t *testing.T) {
	fs := newClientFlags(t, "--session", "7", "--seats", "1,2", "--hold", "90s")
	cfg, err := LoadClientConfig(fs)
	if err != nil {
		t.Fatalf("LoadClientConfig: %v", err)
	}
	if cfg.SessionID != "7" || len(cfg.SeatIDs()) != 2 {
		t.Fatalf("selection = %q %v", cfg.SessionID, cfg.SeatIDs())
	}
	if cfg.Hold != 90*time.Second || cfg.RedirectDelay != 8*time.Second {
		t.Fatalf("durations = %v %v", cfg.Hold, cfg.RedirectDelay)
	}
	if cfg.BackendURL != "http://localhost:8080" {
		t.Fatalf("BackendURL = %q", cfg.BackendURL)
	}
}

func TestLoadClientConfigFromEnv(t *testing.T) {
	t.Setenv("CHECKOUT_SESSION", "12")
	t.Setenv("CHECKOUT_SEATS", "4")
	t.Setenv("CHECKOUT_BACKEND_URL", "http://cine:9000")
	cfg, err := LoadClientConfig(newClientFlags(t))
	if err != nil {
		t.Fatalf("LoadClientConfig: %v", err)
	}
	if cfg.SessionID != "12" || cfg.BackendURL != "http://cine:9000" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadClientConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkout.yaml")
	if err := os.WriteFile(path, []byte("session: \"3\"\nseats: \"8,9\"\ndownload_dir: /tmp/tickets\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadClientConfig(newClientFlags(t, "--config", path))
	if err != nil {
		t.Fatalf("LoadClientConfig: %v", err)
	}
	if cfg.SessionID != "3" || cfg.DownloadDir != "/tmp/tickets" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadClientConfigRequiresSelection(t *testing.T) {
	_, err := LoadClientConfig(newClientFlags(t, "--session", "7"))
	if !errors.Is(err, ErrNoSelection) {
		t.Fatalf("err = %v, want ErrNoSelection", err)
	}
}
