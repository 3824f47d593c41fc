// Package logging builds the launcher's zap logger. Console lines read
// "[LEVEL] [launch]: message"; Fatal is reported as CRITICAL and ends the
// process with the configured exit status.
package logging

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Name is the logger name shown in every console line.
const Name = "launch"

// DefaultFatalExitCode is the status used after a Fatal log.
const DefaultFatalExitCode = -1

// Options configures New. Zero values pick sensible defaults.
type Options struct {
	// Level is one of debug, info, warn, error. Anything else means info.
	Level string

	// Console defaults to os.Stderr.
	Console io.Writer

	// File, when set, also receives JSON lines.
	File string

	// Color forces level coloring on or off; nil detects a terminal.
	Color *bool

	// FatalExitCode defaults to DefaultFatalExitCode.
	FatalExitCode *int

	// Exit defaults to os.Exit.
	Exit func(code int)
}

var levelNames = map[zapcore.Level]string{
	zapcore.DebugLevel:  "DEBUG",
	zapcore.InfoLevel:   "INFO",
	zapcore.WarnLevel:   "WARNING",
	zapcore.ErrorLevel:  "ERROR",
	zapcore.DPanicLevel: "CRITICAL",
	zapcore.PanicLevel:  "CRITICAL",
	zapcore.FatalLevel:  "CRITICAL",
}

var levelAttributes = map[zapcore.Level][]color.Attribute{
	zapcore.DebugLevel:  {color.FgMagenta},
	zapcore.InfoLevel:   {color.FgBlue},
	zapcore.WarnLevel:   {color.FgYellow},
	zapcore.ErrorLevel:  {color.FgRed},
	zapcore.DPanicLevel: {color.FgRed, color.Bold},
	zapcore.PanicLevel:  {color.FgRed, color.Bold},
	zapcore.FatalLevel:  {color.FgRed, color.Bold},
}

// levelPalette builds the colors of one logger. A nil palette means plain
// level names.
func levelPalette(colored bool) map[zapcore.Level]*color.Color {
	if !colored {
		return nil
	}
	palette := make(map[zapcore.Level]*color.Color, len(levelAttributes))
	for l, attrs := range levelAttributes {
		c := color.New(attrs...)
		c.EnableColor()
		palette[l] = c
	}
	return palette
}

// LevelName returns the console name of a level.
func LevelName(l zapcore.Level) string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return l.CapitalString()
}

// ParseLevel maps a configured level name to a zap level.
func ParseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func bracketLevelEncoder(palette map[zapcore.Level]*color.Color) zapcore.LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		name := LevelName(l)
		if c, ok := palette[l]; ok {
			name = c.Sprint(name)
		}
		enc.AppendString("[" + name + "]")
	}
}

func bracketNameEncoder(name string, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + name + "]:")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// exitHook ends the process after a Fatal entry has been written.
type exitHook struct {
	code int
	exit func(int)
}

func (h *exitHook) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {
	h.exit(h.code)
}

// New creates the launcher logger, named "launch".
func New(opts Options) *zap.Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	colored := isTerminal(console) && !color.NoColor
	if opts.Color != nil {
		colored = *opts.Color
	}
	exit := opts.Exit
	if exit == nil {
		exit = os.Exit
	}
	code := DefaultFatalExitCode
	if opts.FatalExitCode != nil {
		code = *opts.FatalExitCode
	}
	level := ParseLevel(opts.Level)

	consoleConfig := zapcore.EncoderConfig{
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      bracketLevelEncoder(levelPalette(colored)),
		EncodeName:       bracketNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(zapcore.AddSync(console)), level),
	}

	// File output (structured JSON, if configured)
	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileConfig := zap.NewProductionEncoderConfig()
			fileConfig.TimeKey = "time"
			fileConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(fileConfig),
				zapcore.AddSync(file),
				level,
			))
		}
	}

	return zap.New(zapcore.NewTee(cores...),
		zap.WithFatalHook(&exitHook{code: code, exit: exit}),
	).Named(Name)
}
