// Package game is the ebiten host binding for the camera core: it runs the
// sandbox city, adapts ebiten input and the orbit rig to the host contracts,
// draws the scene and the overlay, and hot-reloads the settings file.
package game

import (
	"fmt"
	"math/rand"
	"time"

	"citycam/internal/camera"
	"citycam/internal/config"
	"citycam/internal/host"
	"citycam/internal/options"
	"citycam/internal/sim"
	"citycam/internal/threading"
	"citycam/internal/threading/monitoring"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
)

const perfLogInterval = 3 * time.Second

// Game implements ebiten.Game.
type Game struct {
	log          zerolog.Logger
	settingsPath string

	city     *sim.City
	sys      *camera.System
	rig      *Rig
	input    *Input
	hud      *HUD
	renderer *Renderer
	watcher  *config.Watcher
	tc       *threading.ThreadingComponents
	rng      *rand.Rand
	detach   func()

	width, height int
	lastPerfLog   time.Time
}

// NewGame builds the city, the camera core and everything around them.
func NewGame(o *options.Options, log zerolog.Logger) (*Game, error) {
	cfg, err := config.LoadOrDefault(o.SettingsPath)
	if err != nil {
		log.Warn().Err(err).Str("path", o.SettingsPath).Msg("settings unreadable, using defaults")
	}

	cityOpts := sim.DefaultOptions()
	cityOpts.Vehicles = o.Vehicles
	cityOpts.Pedestrians = o.Pedestrians
	cityOpts.Trains = o.Trains
	cityOpts.Seed = o.Seed
	city, err := sim.NewCity(cityOpts, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build city: %w", err)
	}

	g := &Game{
		log:          log.With().Str("component", "game").Logger(),
		settingsPath: o.SettingsPath,
		city:         city,
		rig:          NewRig(mgl64.Vec3{0, 0, 0}, city),
		input:        NewInput(log),
		hud:          NewHUD(o.ShowStats),
		tc:           threading.NewThreadingComponents(),
		rng:          rand.New(rand.NewSource(o.Seed)),
		width:        o.WindowWidth,
		height:       o.WindowHeight,
	}
	g.sys = camera.New(cfg, camera.Deps{
		Camera:   g.rig,
		Cursor:   g.rig,
		Entities: city,
		Terrain:  city,
		UIHider:  g.hud,
		Logger:   log.With().Str("component", "camera").Logger(),
		Rand:     g.rng,
	})
	g.detach = g.hud.Attach(g.sys)
	g.renderer = NewRenderer(city, g.tc)

	if o.WatchSettings {
		w, err := config.NewWatcher(o.SettingsPath)
		if err != nil {
			g.log.Warn().Err(err).Msg("settings hot reload disabled")
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

// Close stops background work.
func (g *Game) Close() {
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			g.log.Warn().Err(err).Msg("failed to close settings watcher")
		}
	}
	if g.detach != nil {
		g.detach()
	}
	g.tc.Shutdown()
}

// Camera returns the camera core.
func (g *Game) Camera() *camera.System {
	return g.sys
}

// Update advances one tick.
func (g *Game) Update() error {
	pm := g.tc.PerformanceMonitor
	frameTimer := pm.StartFrame()
	defer frameTimer.EndFrame()

	dt := 1.0 / float64(ebiten.TPS())

	g.input.Poll()
	if action := g.hud.Update(dt, g.input, g.width); action != actionNone {
		g.perform(action)
	}
	g.handleHotkeys()
	g.handlePick()
	g.rig.UpdateController(dt, g.orbitControls())

	pm.ProfiledFunction(monitoring.SectionSimTick, func() {
		g.city.Tick(dt)
	})
	pm.ProfiledFunction(monitoring.SectionCamera, func() {
		g.sys.Update(dt, g.input)
	})

	g.reloadIfChanged()
	g.updateSceneMetrics()
	g.logPerformanceAlerts()
	return nil
}

// Draw renders the scene and the overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, g.rig, g.sys.Following())
	g.hud.Draw(screen, g.tc.PerformanceMonitor)
}

// Layout uses the window size as the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (g *Game) handleHotkeys() {
	if g.input.blocked {
		return
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		g.hud.TogglePanel()
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		g.hud.ToggleStats()
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		g.perform(actionFollowRandom)
	case inpututil.IsKeyJustPressed(ebiten.KeyF4):
		g.perform(actionWalkthrough)
	}
}

// handlePick follows the entity under a click while the cursor is free.
func (g *Game) handlePick() {
	if !g.input.click || !g.rig.CursorVisible() || g.sys.InWalkthrough() {
		return
	}
	id, ok := g.renderer.Pick(g.input.Cursor())
	if !ok {
		return
	}
	g.input.consumeClick()
	if !g.sys.RequestFollow(id) {
		g.hud.SetStatus("That %s cannot be followed right now", id.Kind)
	}
}

func (g *Game) orbitControls() OrbitControls {
	if g.input.blocked || !g.rig.ControllerEnabled() {
		return OrbitControls{}
	}
	var c OrbitControls
	c.Yaw = axis(ebiten.IsKeyPressed(ebiten.KeyArrowLeft), ebiten.IsKeyPressed(ebiten.KeyArrowRight))
	c.PanZ = axis(ebiten.IsKeyPressed(ebiten.KeyArrowUp), ebiten.IsKeyPressed(ebiten.KeyArrowDown))
	c.Tilt = axis(ebiten.IsKeyPressed(ebiten.KeyPageUp), ebiten.IsKeyPressed(ebiten.KeyPageDown))
	c.Zoom = g.input.ScrollDelta()
	return c
}

func axis(pos, neg bool) float64 {
	switch {
	case pos && !neg:
		return 1
	case neg && !pos:
		return -1
	default:
		return 0
	}
}

func (g *Game) perform(a hudAction) {
	switch a {
	case actionToggle:
		g.sys.RequestToggle()
	case actionWalkthrough:
		if g.sys.InWalkthrough() {
			g.sys.StopWalkthrough()
		} else if !g.sys.StartWalkthrough() {
			g.hud.SetStatus("Nothing to follow")
		}
	case actionNextTarget:
		g.sys.NextWalkthroughTarget()
	case actionFollowRandom:
		g.followRandom()
	case actionStopFollowing:
		g.sys.StopFollowing()
	case actionSave:
		cfg := g.sys.Config()
		if err := config.SaveConfig(&cfg, g.settingsPath); err != nil {
			g.log.Error().Err(err).Str("path", g.settingsPath).Msg("failed to save settings")
			g.hud.SetStatus("Save failed: %v", err)
			return
		}
		g.log.Info().Str("path", g.settingsPath).Msg("settings saved")
		g.hud.SetStatus("Settings saved")
	case actionReload:
		g.reload()
	case actionReset:
		g.sys.ApplyConfig(*config.Default())
		g.hud.SetStatus("Settings reset to defaults")
	}
}

// followRandom follows a random live entity, preferring ones the camera can
// see.
func (g *Game) followRandom() {
	eye := g.rig.Pose().Position
	var visible, all []host.EntityID
	for _, kind := range []host.Kind{host.KindVehicle, host.KindPedestrian} {
		g.city.Each(kind, func(id host.EntityID, s host.Snapshot) bool {
			if !camera.Followable(kind, s) {
				return true
			}
			all = append(all, id)
			if g.city.LineOfSight(eye, s.Position.Add(mgl64.Vec3{0, 1, 0})) {
				visible = append(visible, id)
			}
			return true
		})
	}
	pool := visible
	if len(pool) == 0 {
		pool = all
	}
	if len(pool) == 0 {
		g.hud.SetStatus("Nothing to follow")
		return
	}
	g.sys.RequestFollow(pool[g.rng.Intn(len(pool))])
}

func (g *Game) reloadIfChanged() {
	if g.watcher == nil {
		return
	}
	select {
	case err, ok := <-g.watcher.Errors:
		if ok {
			g.log.Warn().Err(err).Msg("settings watcher error")
		}
	default:
	}
	if g.watcher.Changed() {
		g.reload()
	}
}

func (g *Game) reload() {
	cfg, err := config.LoadOrDefault(g.settingsPath)
	if err != nil {
		g.log.Warn().Err(err).Str("path", g.settingsPath).Msg("settings unreadable, using defaults")
		g.hud.SetStatus("Settings file invalid, using defaults")
	} else {
		g.log.Info().Str("path", g.settingsPath).Msg("settings reloaded")
		g.hud.SetStatus("Settings reloaded")
	}
	g.sys.ApplyConfig(*cfg)
}

func (g *Game) updateSceneMetrics() {
	var vehicles, pedestrians int
	g.city.Each(host.KindVehicle, func(_ host.EntityID, s host.Snapshot) bool {
		if camera.Followable(host.KindVehicle, s) {
			vehicles++
		}
		return true
	})
	g.city.Each(host.KindPedestrian, func(_ host.EntityID, s host.Snapshot) bool {
		if camera.Followable(host.KindPedestrian, s) {
			pedestrians++
		}
		return true
	})
	g.tc.PerformanceMonitor.UpdateSceneMetrics(vehicles, pedestrians, len(g.renderer.surfaces))
}

// logPerformanceAlerts reports slow frames at most once per perfLogInterval.
func (g *Game) logPerformanceAlerts() {
	alerts := g.tc.CheckPerformanceAlerts()
	if len(alerts) == 0 {
		return
	}
	now := time.Now()
	if now.Sub(g.lastPerfLog) < perfLogInterval {
		return
	}
	g.lastPerfLog = now
	for _, a := range alerts {
		g.log.Debug().Str("type", a.Type).Float64("value", a.Value).Float64("threshold", a.Threshold).Msg(a.Message)
	}
}
