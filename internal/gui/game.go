// Package gui renders the waterfall as shaded tube meshes in an Ebitengine
// window.
package gui

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/olivier-w/ribbons/internal/render"
	"github.com/olivier-w/ribbons/internal/tube"
	"github.com/olivier-w/ribbons/internal/waterfall"
)

// Playback is the part of player.Player the window controls.
type Playback interface {
	TogglePause()
	Seek(delta time.Duration) error
	AdjustVolume(delta float64)
	Done() <-chan struct{}
}

var background = color.RGBA{12, 14, 22, 255}

// NextFunc opens the next track. ok is false when there are no more tracks.
type NextFunc func() (p Playback, title string, ok bool, err error)

// Game implements ebiten.Game on top of a started waterfall driver.
type Game struct {
	driver *waterfall.Driver
	player Playback
	title  string
	next   NextFunc
	log    *slog.Logger

	camera *render.Camera
	width  int
	height int
	white  *ebiten.Image

	verts   []ebiten.Vertex
	indices []uint32

	mode     render.Mode
	paused   bool
	debug    bool
	released int
	lastErr  error
}

// NewGame creates a Game. p may be nil.
func NewGame(d *waterfall.Driver, p Playback, title string, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	g := &Game{
		driver: d,
		player: p,
		title:  title,
		log:    logger,
		white:  white.SubImage(white.Bounds().Inset(1)).(*ebiten.Image),
	}
	g.watchReleases()
	return g
}

// SetNext sets the function called when the current track ends.
func (g *Game) SetNext(next NextFunc) { g.next = next }

func (g *Game) watchReleases() {
	buf := g.driver.Buffer()
	if buf == nil {
		return
	}
	for _, line := range buf.Lines() {
		line.Surface().OnRelease(func() { g.released++ })
	}
}

// Update polls input and advances the waterfall one frame.
func (g *Game) Update() error {
	if g.player != nil {
		select {
		case <-g.player.Done():
			g.log.Info("playback finished", "title", g.title)
			if err := g.advance(); err != nil {
				return err
			}
		default:
		}
	}
	if err := g.handleInput(); err != nil {
		return err
	}
	if g.paused {
		return nil
	}
	if err := g.driver.Tick(); err != nil {
		if errors.Is(err, waterfall.ErrClosed) {
			return ebiten.Termination
		}
		g.lastErr = err
		return nil
	}
	g.lastErr = nil
	return nil
}

func (g *Game) advance() error {
	if g.next == nil {
		return ebiten.Termination
	}
	p, title, ok, err := g.next()
	if err != nil {
		return err
	}
	if !ok {
		return ebiten.Termination
	}
	g.player, g.title = p, title
	if g.paused {
		g.player.TogglePause()
	}
	ebiten.SetWindowTitle(title + " — ribbons")
	return nil
}

func (g *Game) handleInput() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
		if g.player != nil {
			g.player.TogglePause()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		g.mode = g.mode.Next()
	case inpututil.IsKeyJustPressed(ebiten.KeyW):
		g.driver.SetWaterfallScaling(!g.driver.WaterfallScaling())
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		g.debug = !g.debug
	}
	if g.player == nil {
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		g.seek(-5 * time.Second)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		g.seek(5 * time.Second)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.player.AdjustVolume(0.05)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.player.AdjustVolume(-0.05)
	}
	return nil
}

func (g *Game) seek(delta time.Duration) {
	if err := g.player.Seek(delta); err != nil {
		g.log.Warn("seek failed", "delta", delta, "err", err)
	}
}

// Draw renders slices from oldest to newest so newer ribbons paint over
// older ones.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	buf := g.driver.Buffer()
	if buf == nil || g.camera == nil {
		return
	}

	n := buf.Slices()
	for y := n - 1; y >= 0; y-- {
		c := render.SliceColor(y, n)
		if g.mode == render.ModeLines {
			for _, seg := range buf.DebugLines(y) {
				g.strokeSegment(screen, seg, c)
			}
			continue
		}
		g.verts, g.indices = appendMesh(g.verts[:0], g.indices[:0], buf.Line(y), g.camera, c)
		if len(g.indices) == 0 {
			continue
		}
		screen.DrawTriangles32(g.verts, g.indices, g.white, &ebiten.DrawTrianglesOptions{AntiAlias: true})
	}

	if g.debug {
		for _, seg := range buf.DebugLines(0) {
			g.strokeSegment(screen, seg, color.RGBA{0, 255, 200, 255})
		}
		ebitenutil.DebugPrint(screen, g.status())
	}
}

func (g *Game) strokeSegment(screen *ebiten.Image, seg waterfall.Segment, c color.RGBA) {
	x0, y0, ok0 := g.camera.Project(seg.A)
	x1, y1, ok1 := g.camera.Project(seg.B)
	if ok0 && ok1 {
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, c, true)
	}
}

func (g *Game) status() string {
	cfg := g.driver.Config()
	s := fmt.Sprintf("%s\nFPS: %.1f  TPS: %.1f\nticks: %d  bins: %d  slices: %d\nview: %s  scaling: %t",
		g.title, ebiten.ActualFPS(), ebiten.ActualTPS(), g.driver.Ticks(),
		cfg.BinCount, cfg.IterationCount, g.mode, g.driver.WaterfallScaling())
	if g.lastErr != nil {
		s += "\nerror: " + g.lastErr.Error()
	}
	return s
}

// Layout follows the window size and reframes the camera when it changes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height || g.camera == nil {
		g.width, g.height = outsideWidth, outsideHeight
		lo, hi := render.Bounds(g.driver.Config())
		g.camera = render.NewCamera(lo, hi, g.width, g.height)
	}
	return g.width, g.height
}

// Released reports how many slice surfaces have been released.
func (g *Game) Released() int { return g.released }

// appendMesh projects m's surface through cam and appends its triangles,
// shaded by vertex normal and tinted c. Triangles with a vertex that cannot
// be projected are skipped.
func appendMesh(verts []ebiten.Vertex, indices []uint32, m *tube.Mesh, cam *render.Camera, c color.RGBA) ([]ebiten.Vertex, []uint32) {
	m.RefreshNormals()
	s := m.Surface()
	if len(s.Vertices) == 0 {
		return verts, indices
	}

	base := len(verts)
	visible := make([]bool, len(s.Vertices))
	for i, v := range s.Vertices {
		x, y, ok := cam.Project(v)
		visible[i] = ok
		shade := render.Light(s.Normals[i])
		verts = append(verts, ebiten.Vertex{
			DstX:   x,
			DstY:   y,
			SrcX:   1,
			SrcY:   1,
			ColorR: float32(c.R) / 255 * shade,
			ColorG: float32(c.G) / 255 * shade,
			ColorB: float32(c.B) / 255 * shade,
			ColorA: 1,
		})
	}
	for t := 0; t+2 < len(s.Triangles); t += 3 {
		a, b, d := s.Triangles[t], s.Triangles[t+1], s.Triangles[t+2]
		if !visible[a] || !visible[b] || !visible[d] {
			continue
		}
		indices = append(indices, uint32(base+a), uint32(base+b), uint32(base+d))
	}
	return verts, indices
}
