package ui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/ribbons/internal/player"
	"github.com/olivier-w/ribbons/internal/render"
	"github.com/olivier-w/ribbons/internal/util"
	"github.com/olivier-w/ribbons/internal/waterfall"
)

// Playback is the part of player.Player the TUI drives.
type Playback interface {
	Position() time.Duration
	Duration() time.Duration
	TogglePause()
	Paused() bool
	Seek(delta time.Duration) error
	Volume() float64
	AdjustVolume(delta float64)
	Done() <-chan struct{}
	Close()
}

// chromeRows is the number of terminal rows outside the canvas.
const chromeRows = 7

// Model is the Bubbletea model for the ribbons TUI. Every tick advances the
// waterfall one frame and redraws it.
type Model struct {
	player   Playback
	meta     player.Metadata
	driver   *waterfall.Driver
	interval time.Duration
	log      *slog.Logger

	canvas   *render.Canvas
	camera   *render.Camera
	styles   []lipgloss.Style
	mode     render.Mode
	progress progress.Model

	width    int
	height   int
	paused   bool
	quitting bool
	stopped  bool
	lastErr  error
}

// New creates a Model. p may be nil when the spectrum does not come from a
// file. The driver must already be started.
func New(p Playback, meta player.Metadata, d *waterfall.Driver, fps int, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	fps = max(fps, 1)
	m := Model{
		player:   p,
		meta:     meta,
		driver:   d,
		interval: time.Second / time.Duration(fps),
		log:      logger,
		styles:   sliceStyles(d.Config().IterationCount),
		progress: progress.New(
			progress.WithScaledGradient("#FF8C00", "#FF5F1F"),
			progress.WithoutPercentage(),
		),
	}
	return m.resize(80, 24)
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.interval), tea.SetWindowTitle(windowTitle(m.meta.Title, false))}
	if m.player != nil {
		cmds = append(cmds, checkDone(m.player))
	}
	return tea.Batch(cmds...)
}

func checkDone(p Playback) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			m.stopped = true
			return m.quit()
		}
		switch msg.String() {
		case " ":
			m.paused = !m.paused
			if m.player != nil {
				m.player.TogglePause()
			}
			return m, tea.SetWindowTitle(windowTitle(m.meta.Title, m.paused))
		case "v":
			m.mode = m.mode.Next()
			m.redraw()
		case "w":
			m.driver.SetWaterfallScaling(!m.driver.WaterfallScaling())
		case "left", "h":
			m.seek(-5 * time.Second)
		case "right", "l":
			m.seek(5 * time.Second)
		case "+", "=", "up":
			if m.player != nil {
				m.player.AdjustVolume(0.05)
			}
		case "-", "down":
			if m.player != nil {
				m.player.AdjustVolume(-0.05)
			}
		}
		return m, nil

	case tickMsg:
		if !m.paused {
			if err := m.driver.Tick(); err != nil {
				m.lastErr = err
			} else {
				m.lastErr = nil
			}
			m.redraw()
		}
		return m, tickCmd(m.interval)

	case playbackEndedMsg:
		m.log.Info("playback finished")
		return m.quit()

	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil
	}
	return m, nil
}

// Stopped reports whether the user quit, as opposed to the track ending.
func (m Model) Stopped() bool { return m.stopped }

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	if m.player != nil {
		m.player.Close()
	}
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m *Model) seek(delta time.Duration) {
	if m.player == nil {
		return
	}
	if err := m.player.Seek(delta); err != nil {
		m.log.Warn("seek failed", "delta", delta, "err", err)
		m.lastErr = err
	}
}

func (m Model) resize(width, height int) Model {
	m.width = width
	m.height = height
	m.canvas = render.NewCanvas(width-4, height-chromeRows)
	w, h := m.canvas.Size()
	lo, hi := render.Bounds(m.driver.Config())
	m.camera = render.NewCamera(lo, hi, w, h)
	m.progress.Width = max(10, width-24)
	m.redraw()
	return m
}

func (m *Model) redraw() {
	render.Draw(m.canvas, m.camera, m.driver.Buffer(), m.mode)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render(m.meta.Title))
	if m.meta.Artist != "" {
		b.WriteString("  " + artistStyle.Render(m.meta.Artist))
	}
	b.WriteString("\n\n")

	waterfallView := m.canvas.Render(func(tag int) lipgloss.Style {
		return m.styles[min(tag, len(m.styles)-1)]
	})
	for _, line := range strings.Split(waterfallView, "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n  " + m.statusLine() + "\n")

	if m.lastErr != nil {
		b.WriteString("  " + errorStyle.Render(m.lastErr.Error()) + "\n")
	} else {
		b.WriteString("  " + helpStyle.Render(helpText(m.player != nil)) + "\n")
	}
	return b.String()
}

func (m Model) statusLine() string {
	icon := "▶"
	if m.paused {
		icon = "❚❚"
	}
	scale := ""
	if m.driver.WaterfallScaling() {
		scale = " scaled"
	}
	info := statusStyle.Render(fmt.Sprintf("%s  %s%s  %d bins", icon, m.mode, scale, m.driver.Config().BinCount))

	if m.player == nil {
		return info
	}
	elapsed, total := m.player.Position(), m.player.Duration()
	ratio := 0.0
	if total > 0 {
		ratio = min(1, elapsed.Seconds()/total.Seconds())
	}
	return fmt.Sprintf("%s %s  %s", timeStyle.Render(util.FormatProgress(elapsed, total)), m.progress.ViewAs(ratio), info)
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " — ribbons"
	}
	return "▶ " + title + " — ribbons"
}
