package accesslog

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/webhookx-io/eventsvc/utils"
)

const timeFormat = "2006/01/02 15:04:05.000"

type AccessLogger interface {
	Log(ctx context.Context, entry *Entry)
}

type Options struct {
	File    string
	Format  string
	Colored bool
	// Writer takes precedence over File.
	Writer io.Writer
}

func (opts Options) writer() (io.Writer, error) {
	if opts.Writer != nil {
		return opts.Writer, nil
	}
	switch opts.File {
	case "":
		return nil, errors.New("accesslog file is required")
	case "/dev/stdout":
		return os.Stdout, nil
	case "/dev/stderr":
		return os.Stderr, nil
	}
	return os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
}

// NewAccessLogger returns a logger that tags every line with name.
func NewAccessLogger(name string, opts Options) (AccessLogger, error) {
	if opts.Format != "text" && opts.Format != "json" {
		return nil, errors.New("invalid format: " + opts.Format)
	}
	w, err := opts.writer()
	if err != nil {
		return nil, err
	}

	zerolog.TimeFieldFormat = timeFormat
	zerolog.TimestampFieldName = "ts"

	if opts.Format == "json" {
		logger := zerolog.New(w).With().Str("name", name).Logger()
		return &jsonLogger{logger: logger}, nil
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !opts.Colored,
		TimeFormat: timeFormat,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			"name",
			zerolog.MessageFieldName,
		},
		FieldsExclude:   []string{"name"},
		FormatFieldName: func(i interface{}) string { return "" },
	}
	tag := utils.Colorize("["+name+"]", utils.ColorDarkGray, opts.Colored)
	logger := zerolog.New(output).With().Str("name", tag).Logger()
	return &textLogger{logger: logger}, nil
}

type textLogger struct {
	logger zerolog.Logger
}

func (l *textLogger) Log(ctx context.Context, entry *Entry) {
	l.logger.Log().Ctx(ctx).Timestamp().Msg(entry.String())
}

type jsonLogger struct {
	logger zerolog.Logger
}

func (l *jsonLogger) Log(ctx context.Context, entry *Entry) {
	l.logger.Log().Ctx(ctx).Timestamp().EmbedObject(entry).Send()
}
