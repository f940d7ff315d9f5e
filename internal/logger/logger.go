package logger

import (
	"io"
	"log/slog"
	"os"
)

// Log: общий логгер процесса. До Init пишет в stderr обработчиком по умолчанию.
var Log = slog.Default()

// Init настраивает глобальный логгер: stderr и, если задан, файл.
// stdout остаётся за выводом команд.
// Возвращает функцию закрытия файла.
func Init(level string, logFile string) (func() error, error) {
	writers := []io.Writer{os.Stderr}
	closeFn := func() error { return nil }

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return closeFn, err
		}
		writers = append(writers, f)
		closeFn = f.Close
	}

	Log = New(io.MultiWriter(writers...), level)
	slog.SetDefault(Log)
	return closeFn, nil
}

// New создаёт текстовый логгер с коротким форматом времени.
func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.String("time", a.Value.Time().Format("15:04:05"))
			}
			return a
		},
	})
	return slog.New(handler)
}

// ParseLevel переводит строку в slog.Level; неизвестное значение даёт info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard возвращает логгер, который ничего не пишет. Удобен в тестах.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
