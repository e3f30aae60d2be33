// Package logging sets up the process-wide zerolog logger: coloured console
// output, a plain log file and, optionally, a Graylog GELF sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// Options configures Setup.
type Options struct {
	Level   string
	LogsDir string // empty disables the log file
	Name    string
	Start   time.Time

	GraylogAddress string // empty disables GELF
	Console        io.Writer
}

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, name string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", name, sessionStart.Format("20060102_150405")),
	)
}

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "TRACE":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

type closers []io.Closer

func (cs closers) Close() error {
	var first error
	for _, c := range cs {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Setup builds the logger. The returned closer releases the log file and
// the GELF connection.
func Setup(opts Options) (zerolog.Logger, io.Closer, error) {
	zerolog.SetGlobalLevel(ParseLevel(opts.Level))
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	writers := []io.Writer{
		// write console format with colors to console
		zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
		},
	}
	var cs closers

	if opts.LogsDir != "" {
		if err := os.MkdirAll(opts.LogsDir, 0755); err != nil {
			return zerolog.Nop(), cs, fmt.Errorf("creating logs dir: %w", err)
		}
		start := opts.Start
		if start.IsZero() {
			start = time.Now()
		}
		file, err := os.Create(LogFilePath(opts.LogsDir, opts.Name, start))
		if err != nil {
			return zerolog.Nop(), cs, fmt.Errorf("creating log file: %w", err)
		}
		cs = append(cs, file)
		// write console format without colors to file
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}

	if opts.GraylogAddress != "" {
		gw, err := gelf.NewWriter(opts.GraylogAddress)
		if err != nil {
			_ = cs.Close()
			return zerolog.Nop(), nil, fmt.Errorf("connecting to graylog: %w", err)
		}
		cs = append(cs, gw)
		writers = append(writers, gw)
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().
		Str("app", opts.Name).Logger()
	logger.Info().Str("loglevel", zerolog.GlobalLevel().String()).Msg("Logging set up")
	return logger, cs, nil
}

// Sampled returns a copy of log that lets through at most five entries per
// ten seconds, then one in a hundred. Used for per-tick trace output.
func Sampled(log zerolog.Logger) zerolog.Logger {
	return log.With().Bool("sampled", true).Logger().Sample(&zerolog.BurstSampler{
		Burst:       5,
		Period:      10 * time.Second,
		NextSampler: &zerolog.BasicSampler{N: 100},
	})
}
