package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	if Logger.GetLevel() != log.InfoLevel {
		t.Errorf("level = %v, want info", Logger.GetLevel())
	}

	Info("habit tracker started")
	Warn("something odd")

	data, err := os.ReadFile(filepath.Join(logDir, "dragonlog.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "habit tracker started") {
		t.Errorf("log file missing message, got %q", string(data))
	}
}

func TestInitDebugMode(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: true, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", Logger.GetLevel())
	}

	Debug("Test debug message in debug mode")
}

func TestInitServeMode(t *testing.T) {
	configDir := t.TempDir()
	t.Cleanup(func() { Logger = nil })

	if err := Init(Config{Mode: ModeServe, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger in serve mode: %v", err)
	}
	Info("listening", "addr", ":8080")

	data, err := os.ReadFile(filepath.Join(configDir, "logs", "serve.log"))
	if err != nil {
		t.Fatalf("read serve log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.HasPrefix(line, "{") || !strings.Contains(line, `"msg":"listening"`) || !strings.Contains(line, `"addr":":8080"`) {
		t.Errorf("serve log is not JSON: %q", line)
	}
	if _, err := os.Stat(filepath.Join(configDir, "logs", "dragonlog.log")); !os.IsNotExist(err) {
		t.Error("serve mode wrote to the CLI log file")
	}
}

func TestNamed(t *testing.T) {
	Logger = nil
	l := Named("journal")
	if l == nil {
		t.Fatal("Named returned nil before Init")
	}
	l.Info("dropped")

	var buf bytes.Buffer
	Logger = log.NewWithOptions(&buf, log.Options{Prefix: "dragonlog"})
	defer func() { Logger = nil }()

	Named("journal").Info("checklist:toggle")
	if !strings.Contains(buf.String(), "journal") {
		t.Errorf("expected prefix in output, got %q", buf.String())
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}
