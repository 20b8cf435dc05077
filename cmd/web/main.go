package main

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"

	"breadthpulse/internal/app"
)

// Embedded dashboard frontend
//go:embed all:frontend/*
var frontendFiles embed.FS

func main() {
	var frontendFS fs.FS
	if sub, err := fs.Sub(frontendFiles, "frontend"); err == nil {
		frontendFS = sub
	} else {
		slog.Warn("frontend embedding failed", slog.String("error", err.Error()))
	}

	application, err := app.NewApplication(frontendFS)
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
