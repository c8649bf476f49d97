package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level  string
	Format string
	// Path enables file output with rotation. Empty means stdout.
	Path string
}

// Setup configures the global logrus logger.
func Setup(opts Options) error {
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("unknown logging level %q", opts.Level)
	}
	log.SetLevel(level)
	log.SetOutput(output(opts.Path))

	switch opts.Format {
	case "", "json":
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
	case "text":
		log.SetFormatter(&log.TextFormatter{
			PadLevelText:    true,
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: time.DateTime,
		})
	default:
		return fmt.Errorf("unknown logging format %q", opts.Format)
	}
	return nil
}

func output(path string) io.Writer {
	if path == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    32, // megabytes
		MaxBackups: 2,
		MaxAge:     28, // days
		Compress:   true,
	}
}
