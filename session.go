package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/olivier-w/ribbons/internal/player"
	"github.com/olivier-w/ribbons/internal/queue"
	"github.com/olivier-w/ribbons/internal/spectrum"
)

var errNoPlayableTracks = errors.New("none of the tracks could be played")

// session opens queued tracks one after another, feeding each into the
// shared tap.
type session struct {
	queue   *queue.Queue
	tap     *spectrum.Tap
	opts    player.Options
	log     *slog.Logger
	open    func(path string, tap *spectrum.Tap, opts player.Options) (*player.Player, error)
	current *player.Player
	played  int
}

func newSession(q *queue.Queue, tap *spectrum.Tap, opts player.Options, logger *slog.Logger) *session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &session{queue: q, tap: tap, opts: opts, log: logger, open: openPlayer}
	s.opts.OnFormat = func(rate, channels int) {
		tap.Reset(channels)
		logger.Debug("audio format", "sample_rate", rate, "channels", channels)
	}
	return s
}

func openPlayer(path string, tap *spectrum.Tap, opts player.Options) (*player.Player, error) {
	return player.New(path, tap, opts)
}

// next closes the current player and starts the next playable track. ok is
// false once the queue is exhausted. Tracks that fail to open are logged and
// skipped.
func (s *session) next() (p *player.Player, meta player.Metadata, ok bool, err error) {
	s.close()
	for t := s.queue.Advance(); t != nil; t = s.queue.Advance() {
		p, err := s.open(t.Path, s.tap, s.opts)
		if err != nil {
			s.log.Warn("skipping track", "path", t.Path, "err", err)
			s.queue.Fail()
			continue
		}
		s.current = p
		s.played++
		meta = player.ReadMetadata(t.Path)
		s.log.Info("now playing", "title", meta.Label(), "path", t.Path,
			"position", s.queue.Position()+1, "of", s.queue.Len())
		return p, meta, true, nil
	}
	if s.played == 0 {
		return nil, meta, false, errNoPlayableTracks
	}
	return nil, meta, false, nil
}

// close stops the current track, if any. Its volume carries over to the
// next track.
func (s *session) close() {
	if s.current != nil {
		s.opts.Volume = s.current.Volume()
		s.current.Close()
		s.current = nil
	}
}
