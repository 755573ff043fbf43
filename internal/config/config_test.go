package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"csmc/internal/center"
)

func TestLoadConfig_FullFile(t *testing.T) {
	content := `
center:
  students: 3
  tutors: 1
  seats: 1
  helps: 2
timing:
  max_work: 5
  max_help: 4
  unit: 10ms
  seed: 42
  arrival_rate: 7
pairing: ticket
`
	cfg := loadConfigFromString(t, content)

	if cfg.Center.Students != 3 || cfg.Center.Tutors != 1 || cfg.Center.Seats != 1 || cfg.Center.Helps != 2 {
		t.Errorf("unexpected center config: %+v", cfg.Center)
	}
	if cfg.Timing.MaxWork != 5 {
		t.Errorf("expected max_work 5, got %d", cfg.Timing.MaxWork)
	}
	if cfg.Timing.MaxHelp != 4 {
		t.Errorf("expected max_help 4, got %d", cfg.Timing.MaxHelp)
	}
	if cfg.Timing.Unit != 10*time.Millisecond {
		t.Errorf("expected unit 10ms, got %v", cfg.Timing.Unit)
	}
	if cfg.Timing.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Timing.Seed)
	}
	if cfg.Timing.ArrivalRate != 7 {
		t.Errorf("expected arrival_rate 7, got %d", cfg.Timing.ArrivalRate)
	}
	if cfg.PairingMode() != center.PairingTicket {
		t.Errorf("expected ticket pairing, got %q", cfg.PairingMode())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadConfig_KeepsDefaults(t *testing.T) {
	content := `
center:
  students: 2
  tutors: 2
  seats: 2
  helps: 1
`
	cfg := loadConfigFromString(t, content)

	if cfg.Timing.MaxWork != DefaultMaxWork {
		t.Errorf("expected default max_work %d, got %d", DefaultMaxWork, cfg.Timing.MaxWork)
	}
	if cfg.Timing.MaxHelp != DefaultMaxHelp {
		t.Errorf("expected default max_help %d, got %d", DefaultMaxHelp, cfg.Timing.MaxHelp)
	}
	if cfg.Timing.Unit != time.Second {
		t.Errorf("expected default unit 1s, got %v", cfg.Timing.Unit)
	}
	if cfg.PairingMode() != center.PairingAnonymous {
		t.Errorf("expected anonymous pairing, got %q", cfg.PairingMode())
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("expected reading error, got %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := createTempFile(t, "center: [not, a, map")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("expected parsing error, got %v", err)
	}
}

func TestParseCounts(t *testing.T) {
	cc, err := ParseCounts([]string{"3", "1", "1", "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := CenterConfig{Students: 3, Tutors: 1, Seats: 1, Helps: 2}
	if cc != want {
		t.Errorf("expected %+v, got %+v", want, cc)
	}
}

func TestParseCounts_WrongCount(t *testing.T) {
	if _, err := ParseCounts([]string{"1", "2"}); err == nil {
		t.Error("expected error for two arguments")
	}
}

func TestParseCounts_NonNumeric(t *testing.T) {
	_, err := ParseCounts([]string{"3", "x", "1", "2"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "tutors" {
		t.Errorf("expected field tutors, got %q", verr.Field)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"zero seats", func(c *Config) { c.Center.Seats = 0 }, "center.seats"},
		{"zero tutors", func(c *Config) { c.Center.Tutors = 0 }, "center.tutors"},
		{"negative students", func(c *Config) { c.Center.Students = -1 }, "center.students"},
		{"zero helps", func(c *Config) { c.Center.Helps = 0 }, "center.helps"},
		{"zero max work", func(c *Config) { c.Timing.MaxWork = 0 }, "timing.max_work"},
		{"zero unit", func(c *Config) { c.Timing.Unit = 0 }, "timing.unit"},
		{"negative arrival rate", func(c *Config) { c.Timing.ArrivalRate = -3 }, "timing.arrival_rate"},
		{"unknown pairing", func(c *Config) { c.Pairing = "round-robin" }, "pairing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.edit(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for config without counts")
	}
	for _, field := range []string{"center.students", "center.tutors", "center.seats", "center.helps"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected %s in error, got %v", field, err)
		}
	}
}

func TestConfig_WriteRoundTrip(t *testing.T) {
	cfg := validConfig()
	cfg.Timing.Unit = 250 * time.Millisecond

	var buf bytes.Buffer
	if err := cfg.Write(&buf); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "students: 3") {
		t.Errorf("expected students in YAML, got:\n%s", buf.String())
	}

	loaded := loadConfigFromString(t, buf.String())
	if *loaded != *cfg {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}

// Helper functions

func validConfig() *Config {
	cfg := Default()
	cfg.Center = CenterConfig{Students: 3, Tutors: 1, Seats: 1, Helps: 2}
	return cfg
}

func loadConfigFromString(t *testing.T, content string) *Config {
	t.Helper()
	tmpFile := createTempFile(t, content)
	defer os.Remove(tmpFile)

	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func createTempFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	return tmpFile
}
