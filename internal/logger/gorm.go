package logger

import (
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

type gormWriter struct {
	sugar *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.sugar.Infof(format, args...)
}

// NewGormLogger reports slow queries and SQL errors through zap. Record not
// found is expected for id lookups and is not logged.
func NewGormLogger(log *zap.Logger, slow time.Duration) gormlogger.Interface {
	return gormlogger.New(gormWriter{sugar: log.Named("gorm").Sugar()}, gormlogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
