package main

import (
	"fmt"
	"image/color"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/waterball/common"
	"github.com/milk9111/waterball/ecs"
	"github.com/milk9111/waterball/ecs/component"
	"github.com/milk9111/waterball/prefabs"
	"github.com/milk9111/waterball/sim"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
)

const (
	cameraSmoothing = 0.08
	statusTicks     = 180
)

type Game struct {
	sim       *sim.Simulation
	sceneName string
	debug     bool

	paused  bool
	pauseUI *ebitenui.UI
	watcher *prefabs.Watcher

	clipboardReady bool
	camX, camY     float64

	status      string
	statusTimer int
}

func NewGame(sceneName string, s *sim.Simulation, watcher *prefabs.Watcher, debug bool) *Game {
	g := &Game{
		sim:       s,
		sceneName: sceneName,
		debug:     debug,
		watcher:   watcher,
	}
	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard unavailable: %v", err)
	} else {
		g.clipboardReady = true
	}
	g.pauseUI = NewPauseUI(g)
	g.camX, g.camY = g.cameraTarget()
	return g
}

func (g *Game) Update() error {
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.statusTimer > 0 {
		g.statusTimer--
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copySnapshot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reset()
	}

	g.sim.Step()

	tx, ty := g.cameraTarget()
	g.camX = common.Lerp(g.camX, tx, cameraSmoothing)
	g.camY = common.Lerp(g.camY, ty, cameraSmoothing)
	return nil
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.onFileChanged(name)
		case err, ok := <-g.watcher.Errors:
			if ok && err != nil {
				log.Printf("watch: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) onFileChanged(name string) {
	if strings.EqualFold(filepath.Ext(name), ".tengo") {
		g.sim.InvalidateScripts()
		g.setStatus("reloaded script " + filepath.Base(name))
		return
	}
	if err := g.sim.Reload(g.sceneName); err != nil {
		log.Printf("reload after %s: %v", name, err)
		g.setStatus("reload failed, see log")
		return
	}
	g.setStatus("reloaded " + filepath.Base(name))
}

func (g *Game) reset() {
	if err := g.sim.Reset(); err != nil {
		log.Printf("reset: %v", err)
		g.setStatus("reset failed, see log")
		return
	}
	g.camX, g.camY = g.cameraTarget()
}

func (g *Game) copySnapshot() {
	if !g.clipboardReady {
		g.setStatus("clipboard unavailable")
		return
	}
	data, err := g.sim.MarshalSummary()
	if err != nil {
		log.Printf("snapshot: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.setStatus(fmt.Sprintf("copied snapshot of tick %d", g.sim.Tick()))
}

func (g *Game) setStatus(s string) {
	g.status = s
	g.statusTimer = statusTicks
}

// cameraTarget follows the first ball; without balls it stays at the origin.
func (g *Game) cameraTarget() (float64, float64) {
	balls := g.sim.Balls()
	if len(balls) == 0 {
		return 0, 0
	}
	p := balls[0].Snapshot.Position
	return 0, p.Y()
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	w := g.sim.World()
	g.drawVolumes(screen, w)
	g.drawBalls(screen, w)
	if g.debug {
		g.drawProxies(screen)
	}

	lines := []string{
		fmt.Sprintf("scene %s  tick %d  TPS %.1f  FPS %.1f", g.sim.Scene().Name, g.sim.Tick(), ebiten.ActualTPS(), ebiten.ActualFPS()),
	}
	for _, b := range g.sim.Balls() {
		s := b.Snapshot
		lines = append(lines, fmt.Sprintf("%-8s y=%8.3f vy=%9.5f %s", b.Name, s.Position.Y(), s.Velocity.Y(), s.Region))
	}
	lines = append(lines, "[Esc] pause  [R] reset  [C] copy snapshot")
	if g.statusTimer > 0 {
		lines = append(lines, g.status)
	}
	ebitenutil.DebugPrint(screen, strings.Join(lines, "\n"))

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) drawVolumes(screen *ebiten.Image, w *ecs.World) {
	volumes := w.Query(component.TriggerVolumeComponent.Kind(), component.TransformComponent.Kind())
	sort.Slice(volumes, func(i, j int) bool { return layerOf(w, volumes[i]) < layerOf(w, volumes[j]) })

	for _, e := range volumes {
		vol, _ := ecs.Get(w, e, component.TriggerVolumeComponent.Kind())
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		lo, hi := vol.Bounds(t.Position)
		x0, y0 := common.WorldToScreen(lo.X(), hi.Y(), g.camX, g.camY)
		x1, y1 := common.WorldToScreen(hi.X(), lo.Y(), g.camX, g.camY)

		vector.FillRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), colorOf(w, e, colornames.Steelblue), false)
		if g.debug {
			vector.StrokeRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), 1, colornames.Lightgrey, false)
		}
	}
}

func (g *Game) drawBalls(screen *ebiten.Image, w *ecs.World) {
	for _, b := range g.sim.Balls() {
		p := b.Snapshot.Position
		x, y := common.WorldToScreen(p.X(), p.Y(), g.camX, g.camY)
		r := float32(b.Radius * common.PixelsPerUnit)

		vector.FillCircle(screen, float32(x), float32(y), r, colorOf(w, b.Entity, colornames.Crimson), true)
		if g.debug {
			v := b.Snapshot.Velocity
			// velocity is per tick; scale it up to a visible length
			ex, ey := common.WorldToScreen(p.X()+v.X()*60, p.Y()+v.Y()*60, g.camX, g.camY)
			vector.StrokeLine(screen, float32(x), float32(y), float32(ex), float32(ey), 2, colornames.Lightgrey, true)
		}
	}
}

func colorOf(w *ecs.World, e ecs.Entity, fallback color.Color) color.Color {
	if look, ok := ecs.Get(w, e, component.AppearanceComponent.Kind()); ok && look.Color != nil {
		return look.Color
	}
	return fallback
}

func layerOf(w *ecs.World, e ecs.Entity) int {
	if look, ok := ecs.Get(w, e, component.AppearanceComponent.Kind()); ok {
		return look.Layer
	}
	return 0
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
