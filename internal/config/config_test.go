package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	v := viper.New()
	BindFlags(fs, v)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.Ledger != LedgerMongo {
		t.Errorf("unexpected defaults: port=%d ledger=%s", cfg.Port, cfg.Ledger)
	}
	if cfg.Queue.Target != 10 || cfg.Upstream.MinID != 1 || cfg.Upstream.MaxID != 386 {
		t.Errorf("unexpected queue/catalog defaults: %+v %+v", cfg.Queue, cfg.Upstream)
	}
	if cfg.Upstream.Timeout() != 10*time.Second {
		t.Errorf("timeout = %v", cfg.Upstream.Timeout())
	}
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("QUEUE_TARGET", "25")
	t.Setenv("REDIS_URI", "redis://cache:6380")

	cfg, err := load(t)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Queue.Target != 25 {
		t.Errorf("queue target = %d; want 25", cfg.Queue.Target)
	}
	if cfg.RedisAddr() != "cache:6380" {
		t.Errorf("redis addr = %q", cfg.RedisAddr())
	}
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := load(t, "--port", "9100")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("port = %d; want 9100", cfg.Port)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string][]string{
		"port":     {"--port", "70000"},
		"ledger":   {"--ledger", "redis"},
		"postgres": {"--ledger", "postgres"},
		"range":    {"--catalog-min-id", "10", "--catalog-max-id", "5"},
		"target":   {"--queue-target", "0"},
		"timeout":  {"--refill-timeout", "0s"},
		"negative": {"--refill-timeout", "-1m"},
		"backoff":  {"--refill-backoff-initial", "2s", "--refill-backoff-max", "1s"},
	}
	for name, args := range cases {
		if _, err := load(t, args...); err == nil {
			t.Errorf("%s: expected validation error for %s", name, strings.Join(args, " "))
		}
	}
}

func TestUpstreamEndpoints(t *testing.T) {
	c := DefaultUpstreamConfig()
	if got := c.SubjectEndpoint(25); got != "https://pokeapi.co/api/v2/pokemon/25" {
		t.Errorf("SubjectEndpoint = %s", got)
	}
	if got := c.ListEndpoint(386); got != "https://pokeapi.co/api/v2/pokemon?limit=386" {
		t.Errorf("ListEndpoint = %s", got)
	}
}
