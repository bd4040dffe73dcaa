package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, false)

	Debug("hidden debug line")
	Info("visible info line", "items", 3)

	out := buf.String()
	if strings.Contains(out, "hidden debug line") {
		t.Errorf("debug message logged at info level: %q", out)
	}
	if !strings.Contains(out, "visible info line") {
		t.Errorf("info message missing: %q", out)
	}
	if !strings.Contains(out, "items=3") {
		t.Errorf("key/value pair missing: %q", out)
	}
}

func TestInitWithWriter_Debug(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, true)

	Debug("debug line")
	if !strings.Contains(buf.String(), "debug line") {
		t.Errorf("debug message missing with debug enabled: %q", buf.String())
	}
}
