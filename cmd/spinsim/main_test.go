package main

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func parseSimFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "run"}
	addSimFlags(cmd)
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestResolveConfigSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.yaml")
	if err := os.WriteFile(path, []byte("seed: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int64
	}{
		{"file zero kept", []string{"--config", path}, 0},
		{"flag overrides file", []string{"--config", path, "--seed", "5"}, 5},
		{"flag without file", []string{"--seed", "11"}, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := resolveConfig(parseSimFlags(t, tt.args...))
			if err != nil {
				t.Fatalf("resolve failed: %v", err)
			}
			if cfg.Seed == nil || *cfg.Seed != tt.want {
				t.Errorf("expected seed %d, got %v", tt.want, cfg.Seed)
			}
		})
	}
}

func TestResolveConfigFillsMissingSeed(t *testing.T) {
	cfg, err := resolveConfig(parseSimFlags(t))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if cfg.Seed == nil || *cfg.Seed != seed {
		t.Errorf("expected the flag default seed %d, got %v", seed, cfg.Seed)
	}
}

func TestHTTPServerBoundsHeaderReads(t *testing.T) {
	srv := newHTTPServer(":0", http.NotFoundHandler())
	if srv.ReadHeaderTimeout != readHeaderTimeout || srv.ReadHeaderTimeout <= 0 {
		t.Errorf("unexpected read header timeout %v", srv.ReadHeaderTimeout)
	}
	if srv.Addr != ":0" {
		t.Errorf("unexpected addr %q", srv.Addr)
	}
}
