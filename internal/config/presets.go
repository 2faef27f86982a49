package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrPresetNotFound is returned when a named preset has no file in the preset directory.
var ErrPresetNotFound = errors.New("preset not found")

// PresetInfo describes one scenario file available to API clients.
type PresetInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListPresets lists *.yaml / *.yml scenarios in dir, sorted by ID.
// A missing directory yields an empty list.
func ListPresets(dir string) ([]PresetInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []PresetInfo{}, nil
		}
		return nil, err
	}

	out := []PresetInfo{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := presetID(e.Name())
		if !ok {
			continue
		}
		s, err := readScenario(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		name := s.Name
		if name == "" {
			name = id
		}
		out = append(out, PresetInfo{ID: id, Name: name, Description: s.Description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LoadPreset loads preset id from dir. IDs are file names without extension;
// anything that could escape dir is rejected.
func LoadPreset(dir, id string) (*Scenario, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, id)
	}
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return LoadUnchecked(path)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, id)
}

func presetID(file string) (string, bool) {
	for _, ext := range []string{".yaml", ".yml"} {
		if strings.HasSuffix(file, ext) {
			return strings.TrimSuffix(file, ext), true
		}
	}
	return "", false
}
