package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.TraceLevel, ParseLevel("trace"))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("DOZE_LOG_LEVEL", "debug")
	t.Setenv("DOZE_LOG_FORMAT", "json")

	logger := NewFromEnv()
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestNewFromEnvIgnoresInvalidFormat(t *testing.T) {
	t.Setenv("DOZE_LOG_LEVEL", "error")
	t.Setenv("DOZE_LOG_FORMAT", "xml")

	logger := NewFromEnv()
	assert.Equal(t, zerolog.ErrorLevel, logger.GetLevel())
}

func TestWithComponentTagsEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithContext(context.Background(), logger)
	ctx = WithComponent(ctx, "power")
	FromContext(ctx).Info().Msg("watching")

	assert.Contains(t, buf.String(), `"component":"power"`)
	assert.Contains(t, buf.String(), `"message":"watching"`)
}

func TestFromContextWithoutLoggerIsDisabled(t *testing.T) {
	log := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}
