package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewReturnsLoggerForKnownEnvs(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		log, err := New(env)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", env, err)
		}
		if log == nil {
			t.Fatalf("New(%q) returned nil logger", env)
		}
	}
}

// Feature: stock-shop, Property 7: Logs are structured
func TestProperty_LogsAreStructuredJSON(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every entry encodes as one JSON object with level and message", prop.ForAll(
		func(message string) bool {
			var buf bytes.Buffer

			encoderConfig := zapcore.EncoderConfig{
				TimeKey:        "timestamp",
				LevelKey:       "level",
				MessageKey:     "message",
				LineEnding:     zapcore.DefaultLineEnding,
				EncodeLevel:    zapcore.LowercaseLevelEncoder,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				EncodeDuration: zapcore.SecondsDurationEncoder,
			}
			core := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(&buf),
				zapcore.DebugLevel,
			)

			log := zap.New(core)
			log.Info(message, zap.String("sale_id", "abc"), zap.Int("qty", 3))
			log.Sync()

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}
			if entry["message"] != message {
				return false
			}
			if entry["level"] != "info" {
				return false
			}
			if entry["qty"] != float64(3) {
				return false
			}
			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
