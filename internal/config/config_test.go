package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"presaleLedger/internal/model"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreBadger {
		t.Fatalf("expected badger store, got %q", cfg.Store)
	}
	if cfg.TokenDecimals != 9 {
		t.Fatalf("expected 9 decimals, got %d", cfg.TokenDecimals)
	}
	if cfg.RetryBackoff != 500*time.Millisecond {
		t.Fatalf("unexpected backoff: %s", cfg.RetryBackoff)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presale.yaml")
	content := "store: postgres\npg-dsn: postgres://file\ntoken-decimals: 6\nlog-level: warn\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PRESALE_PG_DSN", "postgres://env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	if err := flags.Parse([]string{"--log-level=debug"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StorePostgres {
		t.Fatalf("expected postgres store, got %q", cfg.Store)
	}
	if cfg.PGDSN != "postgres://env" {
		t.Fatalf("env should override file, got %q", cfg.PGDSN)
	}
	if cfg.TokenDecimals != 6 {
		t.Fatalf("expected 6 decimals, got %d", cfg.TokenDecimals)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("flag should override file, got %q", cfg.LogLevel)
	}
}

func TestLoadRejectsBadStore(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PRESALE_STORE", "sqlite")
	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected error for unknown store")
	}

	t.Setenv("PRESALE_STORE", "postgres")
	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected error without pg-dsn")
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress(" 0x00000000000000000000000000000000000000a1 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if addr != common.HexToAddress("0xa1") {
		t.Fatalf("unexpected address: %s", addr.Hex())
	}
	if _, err := ParseAddress("0x1234"); err == nil {
		t.Fatalf("expected error for short address")
	}
	if _, err := ParseAddress(""); err == nil {
		t.Fatalf("expected error for empty address")
	}
}

func TestParseTier(t *testing.T) {
	cases := map[string]model.Tier{"3": model.Tier3Months, "6m": model.Tier6Months, " 12M ": model.Tier12Months}
	for input, want := range cases {
		got, err := ParseTier(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %s want %s", input, got, want)
		}
	}
	for _, input := range []string{"4", "0", "x", "300"} {
		if _, err := ParseTier(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}
