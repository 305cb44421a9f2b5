// Package logging configures the process-wide zerolog logger.
package logging

import (
    "io"
    "os"

    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

// Setup installs the global logger: a console writer in development, JSON
// lines elsewhere. Unknown levels fall back to info.
func Setup(env, level string) zerolog.Logger {
    return SetupWriter(os.Stderr, env, level)
}

func SetupWriter(w io.Writer, env, level string) zerolog.Logger {
    zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
    lvl, err := zerolog.ParseLevel(level)
    if err != nil || level == "" {
        lvl = zerolog.InfoLevel
    }
    zerolog.SetGlobalLevel(lvl)

    out := w
    if env == "development" {
        out = zerolog.ConsoleWriter{Out: w, NoColor: true}
    }
    log.Logger = zerolog.New(out).With().Timestamp().Logger()
    return log.Logger
}
