package logger

import (
	"log/slog"
	"os"
	"strings"
)

var log = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Init replaces the process logger. Production gets JSON at info level,
// everything else gets text at debug level.
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

func Fatal(msg string, args ...any) {
	log.Error(msg, normalize(args)...)
	os.Exit(1)
}

// normalize turns the shorthand logger.Error("msg", err) into a keyed
// attribute. Key/value pairs pass through untouched.
func normalize(args []any) []any {
	if len(args) == 0 {
		return args
	}

	out := make([]any, 0, len(args)+1)
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case error:
			out = append(out, slog.String("error", v.Error()))
		case slog.Attr:
			out = append(out, v)
		case string:
			if i+1 < len(args) {
				out = append(out, v, args[i+1])
				i++
				continue
			}
			out = append(out, slog.String("detail", v))
		default:
			out = append(out, slog.Any("detail", v))
		}
	}

	return out
}
