package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSetupLogger(t *testing.T) {
	// Save original globals.
	origLevel := logLevel
	origFormat := logFormat
	t.Cleanup(func() {
		logLevel = origLevel
		logFormat = origFormat
	})

	for _, tc := range []struct {
		name      string
		logLevel  string
		logFormat string
	}{
		{name: "debug/text", logLevel: "debug", logFormat: "text"},
		{name: "info/json", logLevel: "info", logFormat: "json"},
		{name: "warn/text", logLevel: "warn", logFormat: "text"},
		{name: "error/text", logLevel: "error", logFormat: "text"},
		{name: "unknown/text", logLevel: "unknown", logFormat: "text"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			logLevel = tc.logLevel
			logFormat = tc.logFormat

			logger := setupLogger()
			if logger == nil {
				t.Fatal("setupLogger returned nil")
			}
		})
	}
}

func TestLoadConfig_WithExplicitPath(t *testing.T) {
	origCfgFile := cfgFile
	t.Cleanup(func() { cfgFile = origCfgFile })

	tmpDir := t.TempDir()
	configContent := []byte(`root: "` + tmpDir + `"
state_file: "` + filepath.Join(tmpDir, "state.txt") + `"
excludes:
  - "*.log"
algorithm: "xxh64"
`)
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, configContent, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfgFile = cfgPath

	cfg, err := loadConfig(quietLogger(), syncCmd, nil)
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if cfg.Root != tmpDir {
		t.Errorf("Root = %q, want %q", cfg.Root, tmpDir)
	}
	if cfg.Algorithm != "xxh64" {
		t.Errorf("Algorithm = %q, want xxh64", cfg.Algorithm)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	origCfgFile := cfgFile
	t.Cleanup(func() { cfgFile = origCfgFile })

	cfgFile = filepath.Join(t.TempDir(), "nonexistent.yaml")

	if _, err := loadConfig(quietLogger(), syncCmd, nil); err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	origCfgFile := cfgFile
	t.Cleanup(func() { cfgFile = origCfgFile })

	tmpDir := t.TempDir()
	configContent := []byte(`root: "/from/file"
state_file: "` + filepath.Join(tmpDir, "state.txt") + `"
algorithm: "sha256"
`)
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, configContent, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	cfgFile = cfgPath

	if err := syncCmd.Flags().Set("algo", "blake3"); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(quietLogger(), syncCmd, []string{tmpDir})
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if cfg.Root != tmpDir {
		t.Errorf("positional argument should override the file root, got %q", cfg.Root)
	}
	if cfg.Algorithm != "blake3" {
		t.Errorf("changed flag should override the file algorithm, got %q", cfg.Algorithm)
	}
}

func TestLoadConfig_FlagsOnly(t *testing.T) {
	origCfgFile := cfgFile
	t.Cleanup(func() { cfgFile = origCfgFile })
	cfgFile = ""

	tmpDir := t.TempDir()
	if err := syncCmd.Flags().Set("state-file", filepath.Join(tmpDir, "state.txt")); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(quietLogger(), syncCmd, []string{tmpDir})
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if cfg.Root != tmpDir {
		t.Errorf("Root = %q, want %q", cfg.Root, tmpDir)
	}
	// Defaults kick in during Finalize.
	if cfg.Algorithm != "blake3" {
		t.Errorf("Algorithm = %q, want default blake3", cfg.Algorithm)
	}
}

func TestLoadConfig_MissingRootFailsValidation(t *testing.T) {
	origCfgFile := cfgFile
	t.Cleanup(func() { cfgFile = origCfgFile })
	cfgFile = ""

	if _, err := loadConfig(quietLogger(), versionCmd, nil); err == nil {
		t.Error("expected validation error without a root directory")
	}
}

func TestSetupSignalHandler(t *testing.T) {
	ctx, cancel := setupSignalHandler()
	if ctx == nil {
		t.Fatal("setupSignalHandler returned nil context")
	}

	cancel()

	<-ctx.Done()
	if err := ctx.Err(); err == nil {
		t.Fatal("expected context error after cancel, got nil")
	}
}

func TestVersionCmd(t *testing.T) {
	// versionCmd.Run simply prints version info; should not panic.
	versionCmd.Run(versionCmd, []string{})
}
