package selector

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/sample-pack-maker/internal/model"
)

// WavExt is the only extension accepted, compared case-insensitively.
const WavExt = ".wav"

// Select resolves raw path strings and keeps the existing WAV files.
//
// Each entry is home-expanded, made absolute, cleaned and has its symlinks
// followed. Entries that are not regular files, do not exist, cannot be
// resolved or whose extension is not .wav are dropped silently. Duplicates
// of an already kept resolved path are dropped; the first occurrence keeps
// its position.
//
// Select only stats and resolves paths; it creates nothing.
func Select(raw []string) model.FileList {
	return merge(nil, raw)
}

// Resolve turns a raw path string into an absolute, symlink-free path.
func Resolve(raw string) (string, error) {
	expanded, err := ExpandHome(raw)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// ExpandHome replaces a leading "~" or "~/" with the current user's home directory.
// Other forms such as "~user" are returned unchanged.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	if path != "~" && path[1] != '/' && path[1] != '\\' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// IsWav reports whether path has a .wav extension, ignoring case.
func IsWav(path string) bool {
	return strings.EqualFold(filepath.Ext(path), WavExt)
}

// candidate returns the resolved path of raw when it is an existing WAV file.
func candidate(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	resolved, err := Resolve(raw)
	if err != nil {
		return "", false
	}
	if !IsWav(resolved) {
		return "", false
	}
	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return resolved, true
}

// merge appends the valid, unseen entries of raw to list.
func merge(list model.FileList, raw []string) model.FileList {
	seen := make(map[string]struct{}, len(list)+len(raw))
	for _, p := range list {
		seen[p] = struct{}{}
	}

	for _, r := range raw {
		path, ok := candidate(r)
		if !ok {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		list = append(list, path)
	}
	return list
}
