package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetLoggerAddsModule(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(&buf, "info", "text"))

	GetLogger("pipeline").Info("extracted", "pages", 3)

	out := buf.String()
	assert.Contains(t, out, "module=pipeline")
	assert.Contains(t, out, "pages=3")
	assert.Contains(t, out, "msg=extracted")
}

func TestInitRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Init(&buf, "info", "xml"))
}
