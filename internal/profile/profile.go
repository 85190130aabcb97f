// Package profile holds the owner data served by the tools: server identity,
// biography, CV and the workout list.
package profile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultProfile []byte

// ErrNoWorkouts is returned when a profile lists no workouts to draw from.
var ErrNoWorkouts = errors.New("profile must list at least one workout")

// Profile is the full set of static content behind the server.
type Profile struct {
	Server   ServerIdentity `yaml:"server"`
	Probe    Probe          `yaml:"probe"`
	About    string         `yaml:"about"`
	CV       CV             `yaml:"cv"`
	Workouts []Workout      `yaml:"workouts"`
}

// ServerIdentity is reported by initialize and the GET probe.
type ServerIdentity struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
}

// Probe overrides name and description in the GET probe body.
type Probe struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Workout is one entry the get_workout tool can draw.
type Workout struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Exercises   []string `yaml:"exercises"`
	Duration    string   `yaml:"duration"`
	Difficulty  string   `yaml:"difficulty"`
}

// Default returns the embedded profile.
func Default() (*Profile, error) {
	p, err := Decode(bytes.NewReader(defaultProfile))
	if err != nil {
		return nil, fmt.Errorf("embedded profile: %w", err)
	}
	return p, nil
}

// Load reads a profile from path. An empty path yields the embedded default.
func Load(path string) (*Profile, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Decode parses and validates a YAML profile. Unknown fields are rejected.
func Decode(r io.Reader) (*Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the fields every tool relies on.
func (p *Profile) Validate() error {
	if p.Server.Name == "" {
		return errors.New("server.name is required")
	}
	if p.Server.Version == "" {
		return errors.New("server.version is required")
	}
	if p.About == "" {
		return errors.New("about is required")
	}
	if len(p.Workouts) == 0 {
		return ErrNoWorkouts
	}
	seen := make(map[string]struct{}, len(p.Workouts))
	for i, w := range p.Workouts {
		if w.Name == "" {
			return fmt.Errorf("workouts[%d]: name is required", i)
		}
		if _, dup := seen[w.Name]; dup {
			return fmt.Errorf("workouts[%d]: duplicate name %q", i, w.Name)
		}
		seen[w.Name] = struct{}{}
	}
	return nil
}

// ProbeName falls back to the server name when no probe name is set.
func (p *Profile) ProbeName() string {
	if p.Probe.Name != "" {
		return p.Probe.Name
	}
	return p.Server.Name
}

// ProbeDescription falls back to the server description.
func (p *Profile) ProbeDescription() string {
	if p.Probe.Description != "" {
		return p.Probe.Description
	}
	return p.Server.Description
}
