package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/waterball/common"
	"github.com/milk9111/waterball/prefabs"
	"github.com/milk9111/waterball/sim"
)

func main() {
	sceneName := flag.String("scene", "default", "scene name in prefabs/scenes/ (basename, .yaml optional)")
	headless := flag.Bool("headless", false, "run without a window and print a summary")
	ticks := flag.Int("ticks", 0, "ticks to run headless (0 uses the scene's default)")
	watch := flag.Bool("watch", false, "reload prefabs, scenes and scripts when they change on disk")
	debug := flag.Bool("debug", false, "enable debug logging and overlays")
	logEvery := flag.Int("log-every", 0, "telemetry log interval in ticks (0 uses the scene's, -1 disables)")
	flag.Parse()

	s, err := sim.Load(*sceneName, sim.Options{Debug: *debug, LogEvery: *logEvery})
	if err != nil {
		log.Fatalf("load scene %q: %v", *sceneName, err)
	}

	if *headless {
		if err := s.RunHeadless(*ticks, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	var watcher *prefabs.Watcher
	if *watch {
		watcher, err = prefabs.NewWatcher(prefabs.DefaultWatchDirs()...)
		if err != nil {
			log.Printf("watch disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	ebiten.SetTPS(s.TickRate())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.BaseWidth, common.BaseHeight)
	ebiten.SetWindowTitle("waterball")

	game := NewGame(*sceneName, s, watcher, *debug)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
