package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel)).Named(t.Name())
}

func BenchLogger(b *testing.B) *zap.Logger {
	return zaptest.NewLogger(b, zaptest.Level(zap.DebugLevel)).Named(b.Name())
}
