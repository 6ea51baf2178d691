package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dewvow/housepulse/internal/models"
)

// FileStore persists records as a pretty-printed JSON array in a single
// flat file. A mutex serializes writers within the process; cross-process
// writers are not coordinated.
type FileStore struct {
	logger *logrus.Logger
	path   string
	mu     sync.Mutex
}

// NewFileStore creates a file-backed record store at path, creating the
// parent directory if needed.
func NewFileStore(logger *logrus.Logger, path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{
		logger: logger,
		path:   path,
	}, nil
}

// List returns every stored record. A missing data file is an empty store,
// not an error.
func (s *FileStore) List() ([]models.SuburbRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Get returns the record with the given id, if present.
func (s *FileStore) Get(id string) (models.SuburbRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return models.SuburbRecord{}, false, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, true, nil
		}
	}
	return models.SuburbRecord{}, false, nil
}

// Upsert replaces the record with a matching id or appends a new one.
func (s *FileStore) Upsert(record models.SuburbRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range records {
		if existing.ID == record.ID {
			// DateAdded is immutable after creation
			record.DateAdded = existing.DateAdded
			records[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, record)
	}

	return s.write(records)
}

// Remove deletes the record with the given id.
func (s *FileStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}

	return s.write(kept)
}

// Clear deletes every record.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write([]models.SuburbRecord{})
}

func (s *FileStore) read() ([]models.SuburbRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	var records []models.SuburbRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse data file: %w", err)
	}
	return records, nil
}

func (s *FileStore) write(records []models.SuburbRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}

	s.logger.WithField("count", len(records)).Debug("Wrote record data file")
	return nil
}
