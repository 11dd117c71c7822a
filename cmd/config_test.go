// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: /dev/ttyUSB0
baud: 921600
blacklist: /home/e90/blacklist.json
highlights:
  - 0a9
  - 1EE
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}

	want := &fileConfig{
		Port:       "/dev/ttyUSB0",
		Baud:       921600,
		Blacklist:  "/home/e90/blacklist.json",
		Highlights: []string{"0a9", "1EE"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

// The config hook is wired in init so the root command literal stays free
// of references back into the package (no initialization cycle).
func TestRootCommand_ConfigHookInstalled(t *testing.T) {
	if rootCmd.PersistentPreRunE == nil {
		t.Fatal("PersistentPreRunE not installed")
	}
}

func TestApplyConfigFile_FlagPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: /dev/ttyUSB7\nbaud: 921600\nblacklist: /tmp/bl.json\nhighlights: [\"0A9\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	origConfig, origPort, origBaud := configPath, portName, baudRate
	origBL, origHL := cfgBlacklistPath, cfgHighlights
	defer func() {
		configPath, portName, baudRate = origConfig, origPort, origBaud
		cfgBlacklistPath, cfgHighlights = origBL, origHL
	}()

	// Unset flags take the file values.
	configPath = path
	if err := applyConfigFile(); err != nil {
		t.Fatal(err)
	}
	if portName != "/dev/ttyUSB7" || baudRate != 921600 {
		t.Errorf("port/baud = %q/%d, want file values", portName, baudRate)
	}
	if cfgBlacklistPath != "/tmp/bl.json" {
		t.Errorf("blacklist path = %q", cfgBlacklistPath)
	}
	if diff := cmp.Diff([]string{"0A9"}, cfgHighlights); diff != "" {
		t.Errorf("highlights mismatch (-want +got):\n%s", diff)
	}

	// An explicitly set flag wins over the file.
	if err := rootCmd.PersistentFlags().Set("port", "/dev/ttyACM0"); err != nil {
		t.Fatal(err)
	}
	if err := applyConfigFile(); err != nil {
		t.Fatal(err)
	}
	if portName != "/dev/ttyACM0" {
		t.Errorf("port = %q, want the flag value to win", portName)
	}
}

func TestApplyConfigFile_ExplicitMissingFileErrors(t *testing.T) {
	origConfig := configPath
	defer func() { configPath = origConfig }()

	configPath = filepath.Join(t.TempDir(), "nope.yaml")
	if err := applyConfigFile(); err == nil {
		t.Error("expected error for an explicitly requested missing config")
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := loadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestLoadConfigFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfigFile(path); err == nil {
		t.Error("expected parse error")
	}
}
