package media

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoTracks is returned when an argument resolves to no playable files.
var ErrNoTracks = errors.New("no playable tracks")

// Resolve turns a command-line argument into an ordered list of absolute
// audio file paths. arg may be an audio file, a directory, or an .m3u/.pls
// playlist. Missing and unsupported playlist entries are skipped.
func Resolve(arg string) ([]string, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}

	var tracks []string
	ext := filepath.Ext(arg)
	switch {
	case info.IsDir():
		tracks, err = scanDir(arg)
	case IsPlaylistExt(ext):
		var entries []string
		entries, err = ParsePlaylist(arg)
		tracks = playable(entries)
	case IsSupportedExt(ext):
		tracks = playable([]string{arg})
	default:
		return nil, fmt.Errorf("unsupported format %s (supported: %s)", ext, SupportedExtsList())
	}
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%s: %w", arg, ErrNoTracks)
	}
	return tracks, nil
}

func scanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && IsSupportedExt(filepath.Ext(e.Name())) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return strings.ToLower(paths[i]) < strings.ToLower(paths[j])
	})
	return playable(paths), nil
}

func playable(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !IsSupportedExt(filepath.Ext(p)) {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out
}

// ParsePlaylist reads the file entries of an .m3u, .m3u8 or .pls playlist.
// Relative entries are resolved against the playlist's directory. URLs are
// dropped.
func ParsePlaylist(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))

	pls := strings.EqualFold(filepath.Ext(path), ".pls")
	dir := filepath.Dir(path)
	var entries []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if pls {
			line = plsFile(line)
		} else if strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.Trim(line, `"`)
		if line == "" || strings.Contains(line, "://") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		entries = append(entries, filepath.Clean(line))
	}
	return entries, sc.Err()
}

// plsFile returns the value of a FileN= line, or "".
func plsFile(line string) string {
	key, val, ok := strings.Cut(line, "=")
	if !ok {
		return ""
	}
	key = strings.TrimSpace(key)
	if len(key) <= len("File") || !strings.EqualFold(key[:4], "File") {
		return ""
	}
	for _, r := range key[4:] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return strings.TrimSpace(val)
}
