package main

import (
	"fmt"
	"os"

	"csvdash/internal/config"
	"csvdash/internal/desktop"
	"csvdash/internal/log"
	"csvdash/internal/session"

	"fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cfg.Logger(log.ComponentDesktop)
	log.SetDefault(logger)

	a := app.NewWithID("io.csvdash.desktop")
	s := session.New(logger)
	win := desktop.New(a, s, desktop.Options{ChartWidth: cfg.ChartWidth, ChartHeight: cfg.ChartHeight}, logger)

	path := cfg.DataFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path != "" {
		win.LoadFile(path)
	}
	win.ShowAndRun()
}
