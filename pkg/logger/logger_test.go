package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_WritesJSONWithService(t *testing.T) {
	prev := zerolog.GlobalLevel()
	Reset()
	t.Cleanup(func() {
		Reset()
		zerolog.SetGlobalLevel(prev)
	})

	var buf bytes.Buffer
	log := Init(Options{Level: "debug", Service: "fleet-console", Output: &buf})
	log.Debug().Str("rol", "Cliente").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if entry["service"] != "fleet-console" || entry["message"] != "hello" || entry["rol"] != "Cliente" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	prev := zerolog.GlobalLevel()
	Reset()
	t.Cleanup(func() {
		Reset()
		zerolog.SetGlobalLevel(prev)
	})

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second})
	l := Get()
	l.Info().Msg("x")

	if first.Len() == 0 || second.Len() != 0 {
		t.Fatalf("expected output only on the first writer")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace": zerolog.TraceLevel,
		"DEBUG": zerolog.DebugLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"":      zerolog.InfoLevel,
		"loud":  zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
