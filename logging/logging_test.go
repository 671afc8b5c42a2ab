package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestDefaultLoggerRoutesByLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger(&out, &errOut)
	l.SetLevel(DebugLevel)

	l.Debug("crop", Fields{"bins": 4})
	l.Warn("unknown method", Fields{"method": "bla"})
	l.Error(errors.New("boom"), "write failed")

	if !strings.Contains(out.String(), "[DEBUG] crop {bins=4}") {
		t.Fatalf("stdout = %q, want debug line with fields", out.String())
	}
	if !strings.Contains(errOut.String(), "[WARN] unknown method {method=bla}") {
		t.Fatalf("stderr = %q, want warn line", errOut.String())
	}
	if !strings.Contains(errOut.String(), "[ERROR] write failed: boom") {
		t.Fatalf("stderr = %q, want error line", errOut.String())
	}
}

func TestDefaultLoggerFiltersBelowLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger(&out, &errOut)
	l.SetLevel(WarnLevel)

	l.Info("hidden")
	if out.Len() != 0 {
		t.Fatalf("info logged below level: %q", out.String())
	}
}

func TestFatalCallsExit(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger(&out, &errOut)
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatal(errors.New("bad"), "giving up")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestWithFieldsAndContext(t *testing.T) {
	var out, errOut bytes.Buffer
	base := NewWriterLogger(&out, &errOut)

	ctx := ContextWithFields(context.Background(), Fields{"run": "a"})
	ctx = ContextWithFields(ctx, Fields{"step": 2})

	base.WithFields(Fields{"component": "segment"}).WithContext(ctx).Info("done")

	line := out.String()
	for _, want := range []string{"component=segment", "run=a", "step=2"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestContextWithFieldsKeepsParent(t *testing.T) {
	parent := ContextWithFields(context.Background(), Fields{"run": "a"})
	child := ContextWithFields(parent, Fields{"step": 2})

	fields, _ := fieldsFromContext(parent)
	if _, ok := fields["step"]; ok || len(fields) != 1 {
		t.Fatalf("parent fields changed: %v", fields)
	}
	fields, _ = fieldsFromContext(child)
	if fields["run"] != "a" || fields["step"] != 2 {
		t.Fatalf("child fields = %v", fields)
	}
}

func TestNilGlobalLoggerSilences(t *testing.T) {
	previous := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(previous) })

	SetGlobalLogger(nil)
	if _, ok := OrGlobal(nil).(*NoOpLogger); !ok {
		t.Fatalf("OrGlobal(nil) = %T, want *NoOpLogger", OrGlobal(nil))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"WARN", WarnLevel, false},
		{"warning", WarnLevel, false},
		{"", InfoLevel, false},
		{"verbose", InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrGlobal(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	if _, ok := OrGlobal(nil).(*NoOpLogger); !ok {
		t.Fatalf("OrGlobal(nil) should return the global no-op logger")
	}
	custom := NewWriterLogger(&bytes.Buffer{}, &bytes.Buffer{})
	if OrGlobal(custom) != Logger(custom) {
		t.Fatalf("OrGlobal should return the given logger")
	}
}
