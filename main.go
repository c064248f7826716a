package main

import (
	"embed"
	"log"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	a := NewApp()

	err := wails.Run(&options.App{
		Title:  "Flashdeck",
		Width:  1024,
		Height: 768,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 255, G: 255, B: 255, A: 1},
		OnStartup:        a.startup,
		OnShutdown:       a.shutdown,
		Bind: []interface{}{
			a,
			a.Decks,
			a.Cards,
			a.Quiz,
			a.Export,
			a.Settings,
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
