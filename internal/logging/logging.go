// Package logging holds the process-wide structured logger used by the
// smog command. Library code takes a *zap.Logger explicitly instead.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Common field names.
const (
	FieldContract = "contract"
	FieldKey      = "key"
	FieldPackage  = "package"
	FieldFile     = "file"
	FieldDuration = "duration"
	FieldRunID    = "run_id"
)

// Logger is the global logger. It is a no-op until Initialize is called.
var Logger = zap.NewNop()

// Options configures Initialize.
type Options struct {
	Verbose bool
	JSON    bool
}

// Initialize replaces the global logger.
func Initialize(opts Options) error {
	level := zap.InfoLevel
	if opts.Verbose {
		level = zap.DebugLevel
	}

	if opts.JSON {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		l, err := config.Build()
		if err != nil {
			return err
		}
		Logger = l
		return nil
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	Logger = zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	))
	return nil
}

// Sync flushes the global logger, ignoring errors from unsyncable outputs.
func Sync() {
	_ = Logger.Sync()
}
