package log

import (
	"fmt"
	"time"

	"github.com/webhookx-io/eventsvc/config/modules"
	"github.com/webhookx-io/eventsvc/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006/01/02 15:04:05.000"

func encoderConfig(cfg *modules.LogConfig) zapcore.EncoderConfig {
	if cfg.Format == modules.LogFormatJson {
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "ts"
		ec.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
		return ec
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(utils.Colorize(t.Format(timeLayout), utils.ColorDarkGray, cfg.Colored))
	}
	// component names are padded so that messages line up
	ec.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(fmt.Sprintf("%-10s", "["+name+"]"))
	}
	if cfg.Colored {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return ec
}

// NewZapLogger builds the process logger. It writes to cfg.File, stdout
// when unset, and installs itself as zap's global logger.
func NewZapLogger(cfg *modules.LogConfig) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(string(cfg.Level))
	if err != nil {
		return nil, err
	}

	path := utils.DefaultIfZero(cfg.File, "/dev/stdout")
	sink, _, err := zap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	var encoder zapcore.Encoder
	if cfg.Format == modules.LogFormatJson {
		encoder = zapcore.NewJSONEncoder(encoderConfig(cfg))
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig(cfg))
	}

	logger := zap.New(zapcore.NewCore(encoder, sink, zap.NewAtomicLevelAt(level)),
		zap.ErrorOutput(sink))
	zap.ReplaceGlobals(logger)

	return logger.Sugar(), nil
}
