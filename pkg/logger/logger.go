package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config opciones para el logger.
type Config struct {
	Env   string // development -> consola legible; production -> JSON
	Level string // trace, debug, info, warn, error
	// File habilita además un archivo JSON con rotación (vacío = solo stdout).
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger wrapper sobre zerolog para inyección y consistencia.
// base es el logger sin component; Component parte siempre de él.
type Logger struct {
	zl   zerolog.Logger
	base zerolog.Logger
}

// New crea un logger estructurado. En development usa salida legible; en production JSON.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	if cfg.File != "" {
		w = zerolog.MultiLevelWriter(w, newRotatingFile(cfg))
	}

	level := parseLevel(cfg.Level)
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()

	// Redirigir el logger global de zerolog para librerías que lo usen
	log.Logger = zl

	return &Logger{zl: zl, base: zl}
}

// Nop devuelve un logger que descarta todo (tests y herramientas silenciosas).
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), base: zerolog.Nop()}
}

// FromZerolog envuelve un zerolog.Logger existente (p. ej. con un buffer en tests).
func FromZerolog(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl, base: zl}
}

func newRotatingFile(cfg Config) io.Writer {
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 50
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Trace, Debug, Info, Warn, Error delegados a zerolog.
func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With crea un sublogger con campos fijos.
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

// Component devuelve un sublogger con el campo component fijo. Sobre un logger que ya
// tiene component lo reemplaza en vez de repetir la clave.
func (l *Logger) Component(name string) *Logger {
	return &Logger{zl: l.base.With().Str("component", name).Logger(), base: l.base}
}

// Zerolog devuelve el logger interno por si se necesita la API directa.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
