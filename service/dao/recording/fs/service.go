package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	"github.com/naushadh/streamly/journal"
	"github.com/naushadh/streamly/service/dao"
)

// Service implements a filesystem-based recording storage. Any scheme the
// afs abstraction understands (file, mem, s3, gs, ...) can back it.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

// Ensure Service implements dao.Service
var _ dao.Service[string, journal.Recording] = (*Service)(nil)

// Save persists a recording.
func (s *Service) Save(ctx context.Context, recording *journal.Recording) error {
	if recording == nil {
		return dao.ErrNilEntity
	}
	if recording.ID == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(recording)
	if err != nil {
		return fmt.Errorf("failed to marshal recording: %w", err)
	}

	filePath := s.recordingPath(recording.ID)
	if err := s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save recording to file %s: %w", filePath, err)
	}
	return nil
}

// Load retrieves a recording by id.
func (s *Service) Load(ctx context.Context, id string) (*journal.Recording, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.recordingPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if recording exists: %w", err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}

	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording file: %w", err)
	}

	var recording journal.Recording
	if err := json.Unmarshal(data, &recording); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recording data: %w", err)
	}
	return &recording, nil
}

// Delete removes a recording.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.recordingPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check if recording exists: %w", err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	if err := s.fs.Delete(ctx, filePath); err != nil {
		return fmt.Errorf("failed to delete recording file %s: %w", filePath, err)
	}
	return nil
}

// List returns all stored recordings.
func (s *Service) List(ctx context.Context) ([]*journal.Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list recording files: %w", err)
	}

	var recordings []*journal.Recording
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			continue
		}
		var recording journal.Recording
		if err := json.Unmarshal(data, &recording); err != nil {
			continue
		}
		recordings = append(recordings, &recording)
	}
	return recordings, nil
}

// recordingPath returns the file path for a recording.
func (s *Service) recordingPath(id string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// New creates a new filesystem recording storage service.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	fs := afs.New()

	ctx := context.Background()
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	basePath = url.Normalize(basePath, file.Scheme)

	return &Service{
		basePath: basePath,
		fs:       fs,
	}, nil
}
