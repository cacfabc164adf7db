package sl

import (
	"io"
	"log/slog"
)

const envProd = "prod"

// New создаёт текстовый логгер для окружения env.
// В prod включается уровень Info, в остальных окружениях — Debug.
func New(env string, w io.Writer) *slog.Logger {
	level := slog.LevelDebug
	if env == envProd {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
