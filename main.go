package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/olivier-w/ribbons/internal/gui"
	"github.com/olivier-w/ribbons/internal/media"
	"github.com/olivier-w/ribbons/internal/player"
	"github.com/olivier-w/ribbons/internal/queue"
	"github.com/olivier-w/ribbons/internal/spectrum"
	"github.com/olivier-w/ribbons/internal/ui"
	"github.com/olivier-w/ribbons/internal/waterfall"
)

var (
	shuffleFlag = flag.Bool("shuffle", false, "play tracks in random order")
	repeatFlag  = flag.Bool("repeat", false, "start over after the last track")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: ribbons [flags] <file|directory|playlist>\n       ribbons -demo [flags]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if !*demoFlag && len(args) != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := configFromFlags()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(*logLevelFlag, *logFileFlag, *guiFlag)
	if err != nil {
		return err
	}
	defer closeLog()

	fps := max(*fpsFlag, 1)
	bins := int(cfg.BinCount)
	tap := spectrum.NewTap(bins*2, 2)

	var source waterfall.SpectrumSource
	var sess *session
	if *demoFlag {
		source = spectrum.NewSweep(bins, fps*4)
	} else {
		tracks, err := media.Resolve(args[0])
		if err != nil {
			return err
		}
		win, err := spectrum.ParseWindow(*windowFlag)
		if err != nil {
			return err
		}
		an, err := spectrum.NewAnalyzer(tap, bins, win)
		if err != nil {
			return err
		}
		if *smoothFlag {
			an.SetSmoothing(fps)
		}
		source = an

		q := queue.New(tracks)
		q.SetRepeat(*repeatFlag)
		if *shuffleFlag {
			q.Shuffle(rand.New(rand.NewSource(time.Now().UnixNano())))
		}
		sess = newSession(q, tap, player.Options{Mute: *muteFlag, Volume: *volumeFlag}, logger)
		defer sess.close()
	}

	d, err := waterfall.NewDriver(cfg, source, logger)
	if err != nil {
		return err
	}
	if err := d.Start(); err != nil {
		return err
	}
	defer d.Close()

	if *guiFlag {
		return runGUI(d, sess, fps, logger)
	}
	return runTUI(d, sess, fps, logger)
}

// runTUI shows one Bubbletea program per track until the queue runs out or
// the user quits.
func runTUI(d *waterfall.Driver, sess *session, fps int, logger *slog.Logger) error {
	if sess == nil {
		m := ui.New(nil, player.Metadata{Title: "sweep demo"}, d, fps, logger)
		_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	}

	for {
		p, meta, ok, err := sess.next()
		if err != nil || !ok {
			return err
		}
		m := ui.New(p, meta, d, fps, logger)
		final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		if err != nil {
			return err
		}
		if fm, ok := final.(ui.Model); !ok || fm.Stopped() {
			return nil
		}
	}
}

func runGUI(d *waterfall.Driver, sess *session, fps int, logger *slog.Logger) error {
	title := "sweep demo"
	var g *gui.Game
	if sess == nil {
		g = gui.NewGame(d, nil, title, logger)
	} else {
		p, meta, ok, err := sess.next()
		if err != nil || !ok {
			return err
		}
		title = meta.Label()
		g = gui.NewGame(d, p, title, logger)
		g.SetNext(func() (gui.Playback, string, bool, error) {
			p, meta, ok, err := sess.next()
			if err != nil || !ok {
				return nil, "", ok, err
			}
			return p, meta.Label(), true, nil
		})
	}

	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle(title + " — ribbons")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(fps)

	err := ebiten.RunGame(g)
	d.Close()
	logger.Debug("window closed", "released_surfaces", g.Released())
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
