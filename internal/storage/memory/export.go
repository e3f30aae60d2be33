package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Garsondee/Drone-Fleet/internal/model"
)

// SessionExport is the root JSON structure
type SessionExport struct {
	Session model.Session       `json:"session"`
	Ticks   []model.TickStat    `json:"ticks"`
	Drones  []DroneExport       `json:"drones"`
	Events  []model.FlightEvent `json:"events"`
}

// DroneExport holds one drone's track.
type DroneExport struct {
	Name   string             `json:"name"`
	States []model.DroneState `json:"states"`
}

// FileName builds the export file name for a session.
func FileName(s *model.Session, compress bool) string {
	name := strings.ReplaceAll(s.ScenarioName, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	if name == "" {
		name = "session"
	}
	timestamp := s.StartTime.Format("20060102_150405")
	if compress {
		return fmt.Sprintf("%s_%s.json.gz", name, timestamp)
	}
	return fmt.Sprintf("%s_%s.json", name, timestamp)
}

// exportJSON writes the session data to a (gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()
	outputPath := filepath.Join(b.cfg.OutputDir, FileName(b.session, b.cfg.CompressOutput))

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() SessionExport {
	export := SessionExport{
		Session: *b.session,
		Ticks:   b.ticks,
		Events:  b.events,
		Drones:  make([]DroneExport, 0, len(b.order)),
	}
	for _, name := range b.order {
		rec := b.drones[name]
		export.Drones = append(export.Drones, DroneExport{Name: rec.Name, States: rec.States})
	}
	return export
}

func writeJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data SessionExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}
