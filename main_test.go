package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/olivier-w/ribbons/internal/player"
	"github.com/olivier-w/ribbons/internal/queue"
	"github.com/olivier-w/ribbons/internal/spectrum"
	"github.com/olivier-w/ribbons/internal/waterfall"
)

func setFlag(t *testing.T, name, value string) {
	t.Helper()
	old := flag.Lookup(name).Value.String()
	if err := flag.Set(name, value); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { flag.Set(name, old) })
}

func TestResolveLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ResolveLogLevel(in)
		if err != nil || got != want {
			t.Fatalf("ResolveLogLevel(%q): expected %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := ResolveLogLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ribbons.log")
	logger, closeLog, err := newLogger("warn", path, false)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "bins", 64)
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown bins=64") {
		t.Fatalf("unexpected log contents %q", data)
	}
}

func TestParseVec3(t *testing.T) {
	tests := []struct {
		in      string
		want    mgl32.Vec3
		wantErr bool
	}{
		{in: "1,0.5,2", want: mgl32.Vec3{1, 0.5, 2}},
		{in: " 0.9 ", want: mgl32.Vec3{0.9, 0.9, 0.9}},
		{in: "1,2", wantErr: true},
		{in: "1,x,2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseVec3(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("vector mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigFromFlags(t *testing.T) {
	setFlag(t, "bins", "medium")
	setFlag(t, "slices", "12")
	setFlag(t, "waterfall-scale", "1,0.95,1")

	cfg, err := configFromFlags()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BinCount != waterfall.FFTMedium || cfg.IterationCount != 12 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.AllowWaterfallScale || cfg.WaterfallScale != (mgl32.Vec3{1, 0.95, 1}) {
		t.Fatalf("expected waterfall scaling from flag, got %+v", cfg)
	}
}

func TestConfigFromFlagsRejectsBadValues(t *testing.T) {
	t.Run("bins", func(t *testing.T) {
		setFlag(t, "bins", "100")
		if _, err := configFromFlags(); err == nil {
			t.Fatal("expected unsupported bin count error")
		}
	})
	t.Run("quality", func(t *testing.T) {
		setFlag(t, "quality", "2")
		var cfgErr *waterfall.ConfigError
		if _, err := configFromFlags(); !errors.As(err, &cfgErr) || cfgErr.Field != "ringQuality" {
			t.Fatalf("expected ringQuality config error, got %v", err)
		}
	})
}

func writeMonoWAV(t *testing.T, dir, name string) string {
	t.Helper()
	data := make([]byte, 800)
	var hdr []byte
	hdr = append(hdr, "RIFF"...)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(36+len(data)))
	hdr = append(hdr, "WAVEfmt "...)
	hdr = binary.LittleEndian.AppendUint32(hdr, 16)
	hdr = binary.LittleEndian.AppendUint16(hdr, 1)
	hdr = binary.LittleEndian.AppendUint16(hdr, 1)
	hdr = binary.LittleEndian.AppendUint32(hdr, 8000)
	hdr = binary.LittleEndian.AppendUint32(hdr, 16000)
	hdr = binary.LittleEndian.AppendUint16(hdr, 2)
	hdr = binary.LittleEndian.AppendUint16(hdr, 16)
	hdr = append(hdr, "data"...)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(len(data)))

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, append(hdr, data...), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSessionSkipsBrokenTracks(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.wav")
	if err := os.WriteFile(broken, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	good := writeMonoWAV(t, dir, "good.wav")

	tap := spectrum.NewTap(128, 2)
	sess := newSession(queue.New([]string{broken, good}), tap, player.Options{Mute: true}, nil)
	t.Cleanup(sess.close)

	p, meta, ok, err := sess.next()
	if err != nil || !ok {
		t.Fatalf("expected the good track, got ok=%v err=%v", ok, err)
	}
	if meta.Title != "good" || p.Channels() != 1 {
		t.Fatalf("unexpected track %q with %d channels", meta.Title, p.Channels())
	}
	if tap.Channels() != 1 {
		t.Fatalf("expected tap to follow the track format, got %d channels", tap.Channels())
	}

	if _, _, ok, err := sess.next(); ok || err != nil {
		t.Fatalf("expected clean end of queue, got ok=%v err=%v", ok, err)
	}
}

func TestSessionWithNothingPlayable(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.wav")
	if err := os.WriteFile(broken, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	sess := newSession(queue.New([]string{broken}), spectrum.NewTap(128, 2), player.Options{Mute: true}, nil)
	if _, _, _, err := sess.next(); !errors.Is(err, errNoPlayableTracks) {
		t.Fatalf("expected errNoPlayableTracks, got %v", err)
	}
}
