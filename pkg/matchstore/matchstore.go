package matchstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vexrank/pkg/harvest"
	"vexrank/pkg/logger"
	"vexrank/pkg/robotevents"
)

const archiveFilename = "matches.json"

// SeasonMatches is one season's harvested matches in rating order.
type SeasonMatches struct {
	SeasonID   int             `json:"season_id"`
	SeasonName string          `json:"season_name"`
	Start      time.Time       `json:"start"`
	Matches    []harvest.Match `json:"matches"`
}

// Archive is the completed-harvest artifact: every selected season's rateable
// matches, seasons ordered oldest first, matches ordered chronologically
// within each season. Rating can be recomputed from it without touching the
// API.
type Archive struct {
	SavedAt time.Time       `json:"saved_at"`
	Seasons []SeasonMatches `json:"seasons"`
	Version int             `json:"version"`
}

// Add appends one season's harvest to the archive.
func (a *Archive) Add(season robotevents.Season, matches []harvest.Match) {
	a.Seasons = append(a.Seasons, SeasonMatches{
		SeasonID:   season.ID,
		SeasonName: season.Name,
		Start:      season.Start,
		Matches:    matches,
	})
}

// TotalMatches counts matches across all seasons.
func (a *Archive) TotalMatches() int {
	n := 0
	for _, s := range a.Seasons {
		n += len(s.Matches)
	}
	return n
}

// AllMatches flattens the archive in stored order, which is the order the
// rating engine must consume.
func (a *Archive) AllMatches() []harvest.Match {
	out := make([]harvest.Match, 0, a.TotalMatches())
	for _, s := range a.Seasons {
		out = append(out, s.Matches...)
	}
	return out
}

// Manager handles archive persistence under a directory.
type Manager struct {
	archivePath string
	logger      logger.Logger
}

// NewManager creates a manager writing to dir. The directory is created if
// it does not exist.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	return &Manager{
		archivePath: filepath.Join(dir, archiveFilename),
		logger:      logger.GetLogger(),
	}, nil
}

// Path returns the archive file location.
func (m *Manager) Path() string {
	return m.archivePath
}

// Load reads the archive. A missing file is not an error and returns nil.
func (m *Manager) Load() (*Archive, error) {
	file, err := os.Open(m.archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	defer file.Close()

	var archive Archive
	if err := json.NewDecoder(file).Decode(&archive); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}

	m.logger.InfoWithFields("Harvest archive loaded", map[string]interface{}{
		"path":     m.archivePath,
		"seasons":  len(archive.Seasons),
		"matches":  archive.TotalMatches(),
		"saved_at": archive.SavedAt,
	})

	return &archive, nil
}

// Save writes the archive to disk atomically.
func (m *Manager) Save(archive *Archive) error {
	archive.SavedAt = time.Now().UTC()
	if archive.Version == 0 {
		archive.Version = 1
	}

	tempPath := m.archivePath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary archive file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(archive); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode archive: %w", err)
	}

	// Ensure data is on disk before the rename makes it visible.
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync archive file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close archive file: %w", err)
	}

	if err := os.Rename(tempPath, m.archivePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace archive file: %w", err)
	}

	m.logger.InfoWithFields("Harvest archive saved", map[string]interface{}{
		"path":    m.archivePath,
		"seasons": len(archive.Seasons),
		"matches": archive.TotalMatches(),
	})

	return nil
}

// Delete removes the archive file.
func (m *Manager) Delete() error {
	if err := os.Remove(m.archivePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete archive: %w", err)
	}

	m.logger.Info("Harvest archive deleted")
	return nil
}

// Exists checks if an archive file is present.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.archivePath)
	return err == nil
}
