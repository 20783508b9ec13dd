package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewUsesDebugLevelInDev(t *testing.T) {
	var output bytes.Buffer
	logger := New("dev", &output)

	logger.Debug().Str("day", "2025-03-01").Msg("debug line")
	if !strings.Contains(output.String(), `"day":"2025-03-01"`) {
		t.Fatalf("expected debug line in dev, got %q", output.String())
	}
}

func TestNewSuppressesDebugOutsideDev(t *testing.T) {
	var output bytes.Buffer
	logger := New("prod", &output)

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	if strings.Contains(output.String(), "hidden") || !strings.Contains(output.String(), "shown") {
		t.Fatalf("unexpected log output %q", output.String())
	}
}
