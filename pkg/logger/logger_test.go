package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"vexrank/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "valid config with debug level",
			cfg:     &config.LoggingConfig{Level: "debug"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name:    "config with file output",
			cfg:     &config.LoggingConfig{Level: "info", File: "/tmp/vexrank-test.log"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}

			if tt.cfg.File != "" {
				os.Remove(tt.cfg.File)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"fatal", zerolog.FatalLevel, false},
		{"panic", zerolog.PanicLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).With().Timestamp().Logger()
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	cases := []struct {
		name string
		log  func(string)
	}{
		{"Debug", logger.Debug},
		{"Info", logger.Info},
		{"Warn", logger.Warn},
		{"Error", logger.Error},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf.Reset()
			c.log(c.name + " message")
			if !strings.Contains(buf.String(), c.name+" message") {
				t.Errorf("%s message not found in output", c.name)
			}
		})
	}
}

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.WithField("season_id", 181).Info("season discovered")

	output := buf.String()
	if !strings.Contains(output, "season discovered") {
		t.Error("Message not found in output")
	}
	if !strings.Contains(output, `"season_id":181`) {
		t.Error("Field not found in output")
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.WithFields(map[string]interface{}{
		"event":   "World Championship",
		"matches": 412,
		"scored":  true,
	}).Info("event harvested")

	output := buf.String()
	if !strings.Contains(output, "event harvested") {
		t.Error("Message not found in output")
	}
	if !strings.Contains(output, `"event":"World Championship"`) {
		t.Error("String field not found in output")
	}
	if !strings.Contains(output, `"matches":412`) {
		t.Error("Int field not found in output")
	}
	if !strings.Contains(output, `"scored":true`) {
		t.Error("Bool field not found in output")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	// Nil errors are a no-op.
	if logger.WithError(nil) != Logger(logger) {
		t.Error("WithError(nil) should return the same logger")
	}

	testErr := &testError{msg: "division fetch failed"}
	logger.WithError(testErr).Error("branch abandoned")

	output := buf.String()
	if !strings.Contains(output, "branch abandoned") {
		t.Error("Message not found in output")
	}
	if !strings.Contains(output, "division fetch failed") {
		t.Error("Error message not found in output")
	}
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.InfoWithFields("harvest complete", map[string]interface{}{
		"seasons": 2,
		"matches": 15382,
	})

	output := buf.String()
	if !strings.Contains(output, "harvest complete") {
		t.Error("Message not found in output")
	}
	if !strings.Contains(output, `"seasons":2`) {
		t.Error("Seasons field not found in output")
	}
	if !strings.Contains(output, `"matches":15382`) {
		t.Error("Matches field not found in output")
	}
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	fields := map[string]interface{}{
		"string":   "test",
		"int":      123,
		"int64":    int64(456),
		"float":    3.14,
		"bool":     true,
		"time":     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		"duration": time.Second * 5,
		"strings":  []string{"254A", "254B"},
		"ints":     []int{1, 2, 3},
		"custom":   struct{ Name string }{Name: "test"},
	}

	logger.WithFields(fields).Info("test all types")

	if !strings.Contains(buf.String(), "test all types") {
		t.Error("Message not found in output")
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.
		WithField("component", "harvester").
		WithField("season_id", 181).
		WithFields(map[string]interface{}{
			"event_id":    45821,
			"division_id": 1,
		}).
		Info("chained fields")

	output := buf.String()
	for _, want := range []string{
		"chained fields",
		`"component":"harvester"`,
		`"season_id":181`,
		`"event_id":45821`,
		`"division_id":1`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("%s not found in output", want)
		}
	}
}

func TestGlobalLogger(t *testing.T) {
	cfg := &config.LoggingConfig{Level: "debug"}

	if err := Initialize(cfg); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logger := GetLogger()
	if logger == nil {
		t.Error("GetLogger() returned nil")
	}

	// Convenience functions should not panic.
	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	WithField("key", "value").Info("with field")
	WithFields(map[string]interface{}{"k1": "v1", "k2": "v2"}).Info("with fields")
	WithError(&testError{msg: "test"}).Error("with error")
}

func TestTestLoggerCapture(t *testing.T) {
	tl := NewTestLogger()

	tl.Info("plain message")
	tl.WithField("id", 7).Warn("field message")
	tl.WithError(&testError{msg: "boom"}).Error("error message")

	if !tl.HasMessage("plain message") {
		t.Error("plain message not captured")
	}
	if !tl.HasError() {
		t.Error("error message not captured")
	}

	warns := tl.GetMessagesByLevel("WARN")
	if len(warns) != 1 {
		t.Fatalf("expected 1 warn, got %d", len(warns))
	}
	if warns[0].Fields["id"] != 7 {
		t.Errorf("expected field id=7, got %v", warns[0].Fields["id"])
	}

	tl.Clear()
	if len(tl.GetMessages()) != 0 {
		t.Error("Clear() did not remove messages")
	}
}

// Helper error type for testing
type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}
