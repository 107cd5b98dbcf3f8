// Package queue orders the tracks played in one session.
package queue

import (
	"math/rand"
	"path/filepath"
	"strings"
)

// TrackState represents the playback state of a track.
type TrackState int

const (
	Pending TrackState = iota
	Playing
	Done
	Failed
)

// Track is a single file in the queue.
type Track struct {
	Path  string
	Title string
	State TrackState
}

// Queue walks tracks in playback order. It is not safe for concurrent use.
type Queue struct {
	tracks []Track
	order  []int // playback position → track index
	pos    int
	repeat bool
}

// New creates a Queue from paths. Nothing is current until the first
// Advance.
func New(paths []string) *Queue {
	q := &Queue{
		tracks: make([]Track, len(paths)),
		order:  make([]int, len(paths)),
		pos:    -1,
	}
	for i, p := range paths {
		q.tracks[i] = Track{
			Path:  p,
			Title: strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)),
		}
		q.order[i] = i
	}
	return q
}

// Len returns the total number of tracks.
func (q *Queue) Len() int { return len(q.tracks) }

// Position returns the zero-based playback position, or -1 before the first
// Advance.
func (q *Queue) Position() int { return q.pos }

// SetRepeat makes Advance wrap to the start after the last track.
func (q *Queue) SetRepeat(on bool) { q.repeat = on }

// Shuffle randomizes the order of the tracks that have not been reached yet.
func (q *Queue) Shuffle(r *rand.Rand) {
	rest := q.order[q.pos+1:]
	r.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
}

// Current returns the current track, or nil.
func (q *Queue) Current() *Track {
	if q.pos < 0 || q.pos >= len(q.order) {
		return nil
	}
	return &q.tracks[q.order[q.pos]]
}

// Fail marks the current track as unplayable. Failed tracks are skipped
// when repeating.
func (q *Queue) Fail() {
	if t := q.Current(); t != nil {
		t.State = Failed
	}
}

// Advance finishes the current track and moves to the next playable one,
// marking it Playing. It returns nil at the end of the queue.
func (q *Queue) Advance() *Track {
	if t := q.Current(); t != nil && t.State == Playing {
		t.State = Done
	}
	for range len(q.order) {
		q.pos++
		if q.pos >= len(q.order) {
			if !q.repeat {
				q.pos = len(q.order)
				return nil
			}
			q.pos = 0
		}
		t := q.Current()
		if t.State != Failed {
			t.State = Playing
			return t
		}
	}
	q.pos = len(q.order)
	return nil
}
