package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON logger on stdout as the process default. It runs
// before config loading so startup failures are already structured; main
// swaps the default again once the database log handler is available.
func Setup() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}
