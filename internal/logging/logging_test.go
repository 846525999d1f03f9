package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected LogLevel
	}{
		{name: "Debug", input: "debug", expected: LevelDebug},
		{name: "Info", input: "info", expected: LevelInfo},
		{name: "Warn", input: "warn", expected: LevelWarn},
		{name: "Error", input: "error", expected: LevelError},
		{name: "Case insensitive", input: "DEBUG", expected: LevelDebug},
		{name: "Warning alias", input: "warning", expected: LevelWarn},
		{name: "Padded", input: "  error ", expected: LevelError},
		{name: "Unknown falls back to info", input: "verbose", expected: LevelInfo},
		{name: "Empty falls back to info", input: "", expected: LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLogLevelConstants(t *testing.T) {
	levels := []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("Log levels should be in ascending order: %v >= %v", levels[i], levels[i+1])
		}
	}
}

func TestSetLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	prev := GetLevel()
	defer SetLevel(prev)

	SetLevel(LevelWarn)
	Info("hidden %d", 1)
	Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info should be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "[WARN] shown 2") {
		t.Errorf("Expected warn line in output, got %q", out)
	}
	if IsDebugEnabled() {
		t.Error("IsDebugEnabled should be false at warn level")
	}
}

func TestEnableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "catalog.log")

	prev := GetLevel()
	defer SetLevel(prev)
	SetLevel(LevelInfo)

	if err := EnableFile(FileConfig{Path: path, MaxSizeMB: 1}, nil); err != nil {
		t.Fatalf("EnableFile failed: %v", err)
	}
	Info("written to file")
	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("Expected log line in file, got %q", string(data))
	}
}

func TestEnableFileEmptyPath(t *testing.T) {
	if err := EnableFile(FileConfig{}, nil); err == nil {
		t.Error("Expected error for empty log file path")
	}
}

func TestFileConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_FILE", "")
	if _, ok := FileConfigFromEnv(); ok {
		t.Error("Expected no file config when LOG_FILE is unset")
	}

	t.Setenv("LOG_FILE", "/tmp/catalog.log")
	t.Setenv("LOG_MAX_SIZE_MB", "5")
	t.Setenv("LOG_COMPRESS", "true")

	cfg, ok := FileConfigFromEnv()
	if !ok {
		t.Fatal("Expected file config when LOG_FILE is set")
	}
	if cfg.MaxSizeMB != 5 {
		t.Errorf("MaxSizeMB = %d, want 5", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("MaxBackups = %d, want 3", cfg.MaxBackups)
	}
	if !cfg.Compress {
		t.Error("Compress should be true")
	}
}

// TestLoggingFunctions tests that logging functions don't panic
func TestLoggingFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{name: "Debug doesn't panic", fn: func() { Debug("test message") }},
		{name: "Info doesn't panic", fn: func() { Info("test message") }},
		{name: "Warn doesn't panic", fn: func() { Warn("test message") }},
		{name: "Error doesn't panic", fn: func() { Error("test message") }},
		{name: "Info with args doesn't panic", fn: func() { Info("test %s %d", "message", 123) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Function panicked: %v", r)
				}
			}()
			tt.fn()
		})
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.expected {
				t.Errorf("LogLevel.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
