package kv

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	logger *zap.Logger
}

func newBadgerLogger(l *zap.Logger) badger.Logger {
	return &badgerLogger{logger: l}
}

func (bl *badgerLogger) Errorf(s string, i ...interface{}) {
	bl.logger.Error(fmt.Sprintf(s, i...))
}

func (bl *badgerLogger) Warningf(s string, i ...interface{}) {
	bl.logger.Warn(fmt.Sprintf(s, i...))
}

func (bl *badgerLogger) Infof(s string, i ...interface{}) {
	bl.logger.Info(fmt.Sprintf(s, i...))
}

func (bl *badgerLogger) Debugf(s string, i ...interface{}) {
	bl.logger.Debug(fmt.Sprintf(s, i...))
}

// pebbleLogger adapts zap to pebble.Logger.
type pebbleLogger struct {
	logger *zap.Logger
}

func newPebbleLogger(l *zap.Logger) pebble.Logger {
	return &pebbleLogger{logger: l}
}

func (pl *pebbleLogger) Infof(format string, args ...interface{}) {
	pl.logger.Info(fmt.Sprintf(format, args...))
}

func (pl *pebbleLogger) Errorf(format string, args ...interface{}) {
	pl.logger.Error(fmt.Sprintf(format, args...))
}

func (pl *pebbleLogger) Fatalf(format string, args ...interface{}) {
	pl.logger.Fatal(fmt.Sprintf(format, args...))
}
