package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

var log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Init configures the process logger. Production gets JSON at info level,
// every other environment gets text at debug level.
func Init(environment string) {
	var handler slog.Handler
	if strings.EqualFold(environment, "production") {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	log = slog.New(handler)
	slog.SetDefault(log)
}

func Debug(msg string, args ...any) {
	log.Debug(msg, normalize(args)...)
}

func Info(msg string, args ...any) {
	log.Info(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	log.Error(msg, normalize(args)...)
}

// Fatal logs at error level and exits the process.
func Fatal(msg string, args ...any) {
	log.Error(msg, normalize(args)...)
	os.Exit(1)
}

// normalize lets callers pass either key/value pairs or bare values such as
// an error. Bare values are keyed so slog never emits !BADKEY.
func normalize(args []any) []any {
	if isKeyValues(args) {
		return args
	}

	out := make([]any, 0, len(args)*2)
	for i, arg := range args {
		switch v := arg.(type) {
		case slog.Attr:
			out = append(out, v)
		case error:
			out = append(out, slog.String("error", v.Error()))
		case nil:
			continue
		default:
			out = append(out, slog.Any(fmt.Sprintf("arg%d", i), v))
		}
	}

	return out
}

func isKeyValues(args []any) bool {
	if len(args)%2 != 0 {
		return false
	}
	for i := 0; i < len(args); i += 2 {
		if _, ok := args[i].(string); !ok {
			return false
		}
	}
	return true
}
