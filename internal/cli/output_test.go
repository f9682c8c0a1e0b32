package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Cat", 10, "Cat"},
		{"Pigstep (Stereo Mix)", 10, "Pigstep..."},
		{"Mellohi", 3, "Mel"},
		{"♫♫♫♫♫", 4, "♫..."},
	}
	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{185, "3:05"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.secs); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableWriter(&buf, "ID", "NAME")
	table.Row("cat", "Cat")
	table.Row("pigstep", "Pigstep")
	table.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("table has %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[2], "pigstep  Pigstep") {
		t.Errorf("row = %q, want aligned columns", lines[2])
	}
	if !strings.HasPrefix(lines[1], "cat      Cat") {
		t.Errorf("row = %q, want aligned columns", lines[1])
	}
}

func TestConfigValue(t *testing.T) {
	v, err := configValue("engine.device_tick_ms", "250")
	if err != nil || v != int64(250) {
		t.Errorf("configValue(tick) = %v, %v, want 250", v, err)
	}
	v, err = configValue("engine.volume", "0.5")
	if err != nil || v != 0.5 {
		t.Errorf("configValue(volume) = %v, %v, want 0.5", v, err)
	}
	if _, err := configValue("engine.region_tick_ms", "soon"); err == nil {
		t.Error("configValue(non-integer) error = nil, want error")
	}
	v, err = configValue("catalog.driver", "sqlite")
	if err != nil || v != "sqlite" {
		t.Errorf("configValue(driver) = %v, %v, want sqlite", v, err)
	}
}

func TestReadBuildInfo(t *testing.T) {
	oldVersion, oldCommit, oldCfg := Version, Commit, cfgFile
	t.Cleanup(func() { Version, Commit, cfgFile = oldVersion, oldCommit, oldCfg })

	Version, Commit, cfgFile = "v1.2.3", "abc123", "/tmp/jukebox.toml"
	info := readBuildInfo()
	if info.Version != "v1.2.3" {
		t.Errorf("Version = %q, want v1.2.3", info.Version)
	}
	if info.Commit != "abc123" {
		t.Errorf("Commit = %q, want abc123", info.Commit)
	}
	if info.Config != "/tmp/jukebox.toml" {
		t.Errorf("Config = %q, want /tmp/jukebox.toml", info.Config)
	}
}
