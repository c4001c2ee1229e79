package memory

import (
	"context"
	"sync"

	"github.com/naushadh/streamly/journal"
	"github.com/naushadh/streamly/service/dao"
)

// Service implements an in-memory, thread-safe store for recordings.
type Service struct {
	recordings map[string]*journal.Recording
	mux        sync.RWMutex
}

var _ dao.Service[string, journal.Recording] = (*Service)(nil)

func (s *Service) Save(_ context.Context, r *journal.Recording) error {
	if r == nil {
		return dao.ErrNilEntity
	}
	if r.ID == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()
	s.recordings[r.ID] = r
	return nil
}

func (s *Service) Load(_ context.Context, id string) (*journal.Recording, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mux.RLock()
	r, ok := s.recordings[id]
	s.mux.RUnlock()

	if !ok {
		return nil, dao.ErrNotFound
	}
	return r, nil
}

func (s *Service) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.recordings[id]; !ok {
		return dao.ErrNotFound
	}
	delete(s.recordings, id)
	return nil
}

func (s *Service) List(_ context.Context) ([]*journal.Recording, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	out := make([]*journal.Recording, 0, len(s.recordings))
	for _, r := range s.recordings {
		out = append(out, r)
	}
	return out, nil
}

func New() *Service {
	return &Service{recordings: map[string]*journal.Recording{}}
}
