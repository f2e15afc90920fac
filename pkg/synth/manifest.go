package synth

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/shorts"
)

// Manifest lists the live shorts of a run so a later session can rehydrate
// them with AddShorts.
type Manifest struct {
	Version string       `json:"version"`
	RunID   string       `json:"run_id"`
	Device  string       `json:"device"`
	Shorts  []shorts.Ref `json:"shorts"`
}

const manifestVersion = "1.0"

// Manifest returns the references of every record that is not deleted.
func (s *Synthesizer) Manifest() Manifest {
	m := Manifest{
		Version: manifestVersion,
		RunID:   s.runID.String(),
		Device:  s.fabric.Device(),
		Shorts:  []shorts.Ref{},
	}
	for _, short := range s.shorts {
		if short.State() != shorts.Deleted {
			m.Shorts = append(m.Shorts, short.Ref())
		}
	}
	return m
}

// WriteManifest writes the manifest as indented JSON.
func (s *Synthesizer) WriteManifest(w io.Writer) error {
	data, err := json.MarshalIndent(s.Manifest(), "", "  ")
	if err != nil {
		return fmt.Errorf("synth: encode manifest: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("synth: write manifest: %w", err)
	}
	return nil
}

// ReadManifest decodes a manifest written by WriteManifest.
func ReadManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("synth: decode manifest: %w", err)
	}
	if m.Version != manifestVersion {
		return Manifest{}, fmt.Errorf("synth: unsupported manifest version %q", m.Version)
	}
	return m, nil
}
