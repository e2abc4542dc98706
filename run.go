package deskgraph

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	ClearColor Color
	ShowFPS    bool

	// Dispatcher receives window pointer input. A nil Dispatcher gets one
	// created for the scene.
	Dispatcher *Dispatcher

	// Content draws text and image pixels.
	Content ContentDrawer

	// OnUpdate runs once per tick before the scene updates.
	OnUpdate func(dt float64)
}

var ebitenButtons = [...]ebiten.MouseButton{
	MouseButtonLeft:   ebiten.MouseButtonLeft,
	MouseButtonRight:  ebiten.MouseButtonRight,
	MouseButtonMiddle: ebiten.MouseButtonMiddle,
	MouseButtonX1:     ebiten.MouseButton3,
	MouseButtonX2:     ebiten.MouseButton4,
}

type game struct {
	scene    *Scene
	cfg      RunConfig
	disp     *Dispatcher
	renderer *Renderer
	inside   bool
}

// Run opens a window and drives s until the window closes. Pointer input is
// hit-tested against the scene and delivered through the dispatcher.
func Run(s *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = NewDispatcher(s)
	}
	g := &game{
		scene:    s,
		cfg:      cfg,
		disp:     cfg.Dispatcher,
		renderer: NewRenderer(s, cfg.Content),
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	return ebiten.RunGame(g)
}

func (g *game) Update() error {
	dt := 1 / float64(ebiten.TPS())
	if g.cfg.OnUpdate != nil {
		g.cfg.OnUpdate(dt)
	}
	wx, wy := ebiten.WindowPosition()
	g.scene.SetWindowOrigin(Vec2{float64(wx), float64(wy)})

	if !g.disp.Update() {
		g.processPointer()
	}
	g.scene.Update(dt)
	g.applyCursor()
	return nil
}

// processPointer turns this tick's mouse state into pointer events.
func (g *game) processPointer() {
	mx, my := ebiten.CursorPosition()
	cx, cy := float64(mx), float64(my)
	base := PointerEvent{ClientX: cx, ClientY: cy}
	o := g.scene.WindowOrigin()
	base.ScreenX, base.ScreenY = cx+o.X, cy+o.Y

	inside := mx >= 0 && my >= 0 && mx < g.cfg.Width && my < g.cfg.Height
	if !inside {
		if g.inside {
			ev := base
			ev.Type = PointerLeaveWindow
			g.disp.Handle(ev)
		}
		g.inside = false
		return
	}
	g.inside = true

	ev := base
	ev.Type = PointerMove
	g.disp.Handle(ev)

	for b, eb := range ebitenButtons {
		if inpututil.IsMouseButtonJustPressed(eb) {
			ev := base
			ev.Type, ev.Button = PointerDown, MouseButton(b)
			g.disp.Handle(ev)
		}
		if inpututil.IsMouseButtonJustReleased(eb) {
			ev := base
			ev.Type, ev.Button = PointerUp, MouseButton(b)
			g.disp.Handle(ev)
		}
	}
	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		ev := base
		ev.Type, ev.WheelDelta = PointerWheel, Vec2{wx, wy}
		g.disp.Handle(ev)
	}
}

func (g *game) applyCursor() {
	switch g.disp.Cursor() {
	case "hand", "pointer":
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	case "text":
		ebiten.SetCursorShape(ebiten.CursorShapeText)
	case "crosshair":
		ebiten.SetCursorShape(ebiten.CursorShapeCrosshair)
	case "move":
		ebiten.SetCursorShape(ebiten.CursorShapeMove)
	case "notallowed":
		ebiten.SetCursorShape(ebiten.CursorShapeNotAllowed)
	default:
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(g.cfg.ClearColor.RGBA())
	g.renderer.Draw(screen)
	if g.cfg.ShowFPS {
		drawFPS(screen)
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}
