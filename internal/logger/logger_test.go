package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestConvertFields(t *testing.T) {
	fields := convertFields("round", 2, "error", errors.New("boom"), "dangling")

	assert.Len(t, fields, 2)
	assert.Equal(t, "round", fields[0].Key)
	assert.Equal(t, "error", fields[1].Key)
	assert.Equal(t, zapcore.ErrorType, fields[1].Type)
	assert.Nil(t, convertFields())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNopDoesNotPanic(t *testing.T) {
	log := Nop().With("tournament_id", "abc")
	log.Info("bracket built", "matches", 7)
	log.Error("failed", "error", errors.New("boom"))
}
