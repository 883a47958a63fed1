package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Session SessionMetadata `json:"session"`
	Frames  []FrameRecord   `json:"frames"`
}

// ExportJSON writes a session and its frame stats as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Session: *meta, Frames: frames})
}
