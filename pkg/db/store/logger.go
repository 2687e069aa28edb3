package store

import (
	"time"

	"github.com/mwantia/mediacat/pkg/log"
	"gorm.io/gorm/logger"
)

// gormWriter forwards GORM statement logs to the catalog logger.
type gormWriter struct {
	log log.LoggerService
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Debug(format, args...)
}

func newGormLogger(service log.LoggerService, level logger.LogLevel) logger.Interface {
	if level == 0 {
		level = logger.Silent
	}
	return logger.New(gormWriter{log: service.Named("gorm")}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
