package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo}, // default
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"invalid", slog.LevelInfo}, // fallback to default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSetupWriter(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		check  func(t *testing.T, writer interface{})
	}{
		{
			name: "stdout output",
			config: Config{
				Output: "stdout",
			},
			check: func(t *testing.T, writer interface{}) {
				if writer != os.Stdout {
					t.Error("Expected os.Stdout")
				}
			},
		},
		{
			name: "stderr output",
			config: Config{
				Output: "stderr",
			},
			check: func(t *testing.T, writer interface{}) {
				if writer != os.Stderr {
					t.Error("Expected os.Stderr")
				}
			},
		},
		{
			name: "default output",
			config: Config{
				Output: "",
			},
			check: func(t *testing.T, writer interface{}) {
				if writer != os.Stdout {
					t.Error("Expected os.Stdout as default")
				}
			},
		},
		{
			name: "file output without filename",
			config: Config{
				Output: "file",
			},
			check: func(t *testing.T, writer interface{}) {
				if writer != os.Stdout {
					t.Error("Expected os.Stdout when filename is empty")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := SetupWriter(tt.config)
			tt.check(t, writer)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Config{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}

	logger := NewLogger(cfg)
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}

	logger.Info("test message", "key", "value")
}

func TestNewLogger_AttachesIdentifierToEveryLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sgdns.log")
	log := NewLogger(Config{Level: "info", Format: "json", Output: "file", Filename: path, Identifier: "sgdns-discovery-dev"})

	log.Info("record converged")

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(raw, &entry); err != nil {
		t.Fatalf("failed to parse log JSON: %v", err)
	}
	if entry["identifier"] != "sgdns-discovery-dev" {
		t.Errorf("expected identifier attribute, got %v", entry["identifier"])
	}
}

func TestGenerateRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	if id1 == id2 {
		t.Error("GenerateRequestID should generate unique IDs")
	}

	if !strings.HasPrefix(id1, "req_") {
		t.Errorf("Request ID should start with 'req_', got: %s", id1)
	}

	if len(id1) < 5 {
		t.Errorf("Request ID too short: %s", id1)
	}
}

func TestWithRequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	newCtx := WithRequestID(ctx, requestID)

	retrievedID := GetRequestID(newCtx)
	if retrievedID != requestID {
		t.Errorf("Expected %s, got %s", requestID, retrievedID)
	}
}

func TestGetRequestIDEmpty(t *testing.T) {
	ctx := context.Background()

	requestID := GetRequestID(ctx)
	if requestID != "" {
		t.Errorf("Expected empty string, got %s", requestID)
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer

	baseLogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := WithRequestID(context.Background(), "test-id")
	logger := FromContext(ctx, baseLogger)

	logger.Info("test message")

	logOutput := buf.String()
	var logEntry map[string]interface{}
	if err := json.Unmarshal([]byte(logOutput), &logEntry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}

	if logEntry["request_id"] != "test-id" {
		t.Errorf("Expected request_id test-id, got %v", logEntry["request_id"])
	}

	buf.Reset()
	ctx = context.Background()
	logger = FromContext(ctx, baseLogger)

	logger.Info("test message")

	logOutput = buf.String()
	if err := json.Unmarshal([]byte(logOutput), &logEntry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}

	if _, exists := logEntry["request_id"]; exists {
		t.Error("request_id should not be present when not in context")
	}
}
