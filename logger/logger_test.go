package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesRotatingFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.File = filepath.Join(t.TempDir(), "service.log")

	log, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info("model loaded")
	_ = log.Sync()

	payload, err := os.ReadFile(cfg.File)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(payload), `"msg":"model loaded"`) {
		t.Fatalf("expected JSON log line, got %s", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "xml"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error")
	}
}
