package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" Debug ", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"ERR", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"something", zerolog.InfoLevel},
	}
	for _, c := range cases {
		if got := parseLevel(c.in); got != c.want {
			t.Fatalf("parseLevel(%q)=%v, want %v", c.in, got, c.want)
		}
	}
}

func TestGetenv(t *testing.T) {
	t.Setenv("X", "val")
	if v := getenv("X", "def"); v != "val" {
		t.Fatalf("getenv returned %q, want 'val'", v)
	}
	if v := getenv("Y", "def"); v != "def" {
		t.Fatalf("getenv returned %q, want 'def'", v)
	}
}

func TestInit_LevelAndServiceField(t *testing.T) {
	cases := []struct {
		name      string
		level     string
		wantLevel zerolog.Level
		logDebug  bool
		caller    bool
	}{
		{name: "default info", level: "", wantLevel: zerolog.InfoLevel},
		{name: "debug adds caller", level: "debug", wantLevel: zerolog.DebugLevel, logDebug: true, caller: true},
		{name: "error", level: "error", wantLevel: zerolog.ErrorLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tc.level)
			t.Setenv("LOG_PRETTY", "false")
			var buf bytes.Buffer
			restore := SetOutput(&buf)
			defer restore()

			if L().GetLevel() != tc.wantLevel {
				t.Fatalf("level %v, want %v", L().GetLevel(), tc.wantLevel)
			}

			L().Error().Msg("hello")
			var line map[string]any
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
				t.Fatalf("not json: %q (%v)", buf.String(), err)
			}
			if line["service"] != "stockcast" {
				t.Fatalf("service field missing: %v", line)
			}
			if _, ok := line["caller"]; ok != tc.caller {
				t.Fatalf("caller present=%v, want %v", ok, tc.caller)
			}

			buf.Reset()
			L().Debug().Msg("dbg")
			if (buf.Len() > 0) != tc.logDebug {
				t.Fatalf("debug emitted=%v, want %v", buf.Len() > 0, tc.logDebug)
			}
		})
	}
}

func TestInit_Pretty(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("LOG_PRETTY", "true")
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	L().Info().Msg("pretty line")
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") || !strings.Contains(buf.String(), "pretty line") {
		t.Fatalf("expected console output, got %q", buf.String())
	}
}

// L() never returns nil and initializes level if not set
func TestLoggerAccessor_NotNil(t *testing.T) {
	base = zerolog.Logger{}
	lg := L()
	if lg == nil {
		t.Fatalf("logger is nil")
	}
	if lg.GetLevel() == zerolog.NoLevel {
		t.Fatalf("logger level not initialized")
	}
}

func TestWith_AddsComponent(t *testing.T) {
	var buf bytes.Buffer
	base = zerolog.New(&buf).Level(zerolog.InfoLevel)
	t.Cleanup(func() { base = zerolog.Logger{} })

	l := With("registry")
	l.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"component":"registry"`) {
		t.Fatalf("component field missing: %s", buf.String())
	}
}
