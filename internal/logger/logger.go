package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how the application logger is constructed.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	DevMode  bool   `env:"LOG_DEV_MODE" envDefault:"false"`
	Encoding string `env:"LOG_ENCODING" envDefault:"json"`
}

// Logger is the structured logging surface used across the service.
type Logger interface {
	InitLogger()
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	With(fields ...zap.Field) Logger
	Logger() *zap.Logger
}

type appLogger struct {
	cfg    *Config
	sugar  *zap.SugaredLogger
	logger *zap.Logger
}

// NewAppLogger builds a Logger from Config but does not start it; call InitLogger.
func NewAppLogger(cfg *Config) Logger {
	return &appLogger{cfg: cfg}
}

func (l *appLogger) InitLogger() {
	level := zapcore.InfoLevel
	_ = level.UnmarshalText([]byte(l.cfg.LogLevel))

	var zapCfg zap.Config
	if l.cfg.DevMode {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if l.cfg.Encoding != "" {
		zapCfg.Encoding = l.cfg.Encoding
	}

	built, err := zapCfg.Build()
	if err != nil {
		built = zap.NewNop()
	}
	l.logger = built
	l.sugar = built.Sugar()
}

func (l *appLogger) ensure() {
	if l.sugar == nil {
		l.InitLogger()
	}
}

func (l *appLogger) Debug(args ...interface{}) { l.ensure(); l.sugar.Debug(args...) }
func (l *appLogger) Info(args ...interface{})  { l.ensure(); l.sugar.Info(args...) }
func (l *appLogger) Warn(args ...interface{})  { l.ensure(); l.sugar.Warn(args...) }
func (l *appLogger) Error(args ...interface{}) { l.ensure(); l.sugar.Error(args...) }

func (l *appLogger) Debugf(format string, args ...interface{}) {
	l.ensure()
	l.sugar.Debugf(format, args...)
}
func (l *appLogger) Infof(format string, args ...interface{}) {
	l.ensure()
	l.sugar.Infof(format, args...)
}
func (l *appLogger) Warnf(format string, args ...interface{}) {
	l.ensure()
	l.sugar.Warnf(format, args...)
}
func (l *appLogger) Errorf(format string, args ...interface{}) {
	l.ensure()
	l.sugar.Errorf(format, args...)
}
func (l *appLogger) Fatalf(format string, args ...interface{}) {
	l.ensure()
	l.sugar.Fatalf(format, args...)
}

func (l *appLogger) With(fields ...zap.Field) Logger {
	l.ensure()
	return &appLogger{cfg: l.cfg, logger: l.logger.With(fields...), sugar: l.logger.With(fields...).Sugar()}
}

func (l *appLogger) Logger() *zap.Logger {
	l.ensure()
	return l.logger
}
