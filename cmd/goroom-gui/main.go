package main

import (
	"context"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/philipparndt/goroom/internal/app"
	"github.com/philipparndt/goroom/internal/config"
	"github.com/philipparndt/goroom/internal/host/replay"
	"github.com/philipparndt/goroom/internal/label"
	"github.com/philipparndt/goroom/internal/status"
	"github.com/philipparndt/goroom/pkg/openscad"
)

func main() {
	cfg, err := config.LoadOrDefault(config.DefaultPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var script *replay.Script
	if len(os.Args) > 1 {
		script, err = replay.LoadFile(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading script: %v\n", err)
			os.Exit(1)
		}
	}

	painter := label.NewButtonPainter()
	c := app.New(app.Options{
		Config:   cfg,
		Status:   status.New(os.Stdout),
		Logger:   status.NewLogger(os.Stderr, false),
		Painter:  painter,
		Renderer: openscad.NewRenderer("."),
	})

	a := fyneapp.New()
	w := a.NewWindow("goroom")

	g, err := newGUI(c, painter, script, w)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.run(ctx)

	w.SetContent(g.content())
	w.Resize(fyne.NewSize(1200, 800))
	w.ShowAndRun()
}
