// Package main provides the entry point for the OCR Labeler application.
package main

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"

	"ocr-labeler/internal/app"
	"ocr-labeler/internal/backend"
	"ocr-labeler/internal/ocr"
	"ocr-labeler/internal/version"
	"ocr-labeler/pkg/geometry"
	"ocr-labeler/ui/mainwindow"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	_ "github.com/chai2010/webp"
	_ "golang.org/x/image/tiff"
)

const appTitle = "OCR Labeler"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Short())

	fyneApp := fyneapp.NewWithID("ocr-labeler")

	store, err := backend.OpenLocalStore(storePath(fyneApp.Storage().RootURI().Path()))
	if err != nil {
		log.Printf("Local store unavailable, running in memory: %v", err)
		store = backend.NewLocalStore()
	}

	if engine, err := ocr.NewEngine(); err != nil {
		log.Printf("Text recognition unavailable: %v", err)
	} else {
		store.SetRecognizer(ocr.NewImageRecognizer(engine))
		defer engine.Close()
	}

	state := app.NewState(store)
	state.RunAsync = func(f func()) { go f() }
	state.RunOnUI = fyne.Do

	win := mainwindow.New(fyneApp, state)

	// An image path on the command line opens immediately.
	if len(os.Args) > 1 {
		if err := openImage(state, win, os.Args[1]); err != nil {
			log.Printf("Failed to open %s: %v", os.Args[1], err)
		}
	}

	win.ShowAndRun()
}

func storePath(root string) string {
	return filepath.Join(root, "annotations.json")
}

func openImage(state *app.State, win *mainwindow.MainWindow, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return err
	}
	b := img.Bounds()
	state.SetImage(path, geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())})
	win.ShowImage(img)
	return nil
}
