package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions selects level, format and destination of the process logger
type LogOptions struct {
	Level  string
	Format string // text or json
	// File enables size-based rotation; empty logs to Stderr.
	File string
}

// LogOptionsFromViper reads the logging keys
func LogOptionsFromViper(v interface{ GetString(string) string }) LogOptions {
	return LogOptions{
		Level:  v.GetString(KeyLogLevel),
		Format: v.GetString(KeyLogFormat),
		File:   v.GetString(KeyLogFile),
	}
}

// NewLogger builds the process logger. The returned closer flushes the log
// file, if any.
func NewLogger(opts LogOptions) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level := logrus.InfoLevel
	if opts.Level != "" {
		l, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, err
		}
		level = l
	}
	log.SetLevel(level)

	switch opts.Format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q (text|json)", opts.Format)
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		log.SetOutput(rotator)
		closer = rotator
	} else {
		log.SetOutput(os.Stderr)
	}

	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
