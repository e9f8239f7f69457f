package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigFromStrings(t *testing.T) {
	cfg := ConfigFromStrings(" WARN ", "Text")
	if cfg.Level != "warn" || !cfg.Pretty {
		t.Errorf("ConfigFromStrings() = %+v", cfg)
	}
	if ConfigFromStrings("info", "json").Pretty {
		t.Error("json format must not be pretty")
	}
}

func TestConfigure_JSONWithComponent(t *testing.T) {
	defer Configure(Config{Level: "info", Pretty: true})

	var buf bytes.Buffer
	lgr := Configure(Config{Level: "info", Output: &buf})
	broker := Component(lgr, "broker")
	broker.Info().Int64("userID", 7).Msg("delivered")
	Debug().Msg("dropped below level")

	var line map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("want exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if line["component"] != "broker" || line["message"] != "delivered" || line["userID"] != float64(7) {
		t.Errorf("log line = %v", line)
	}
}
