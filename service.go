package streamly

import (
	"log/slog"

	"github.com/naushadh/streamly/journal"
	"github.com/naushadh/streamly/service/dao"
	rfs "github.com/naushadh/streamly/service/dao/recording/fs"
	rmemory "github.com/naushadh/streamly/service/dao/recording/memory"
)

// Service is the high-level entry point of the engine. It wires the
// configuration and the recording store into a Runtime handle.
type Service struct {
	config       *Config
	recordingDAO dao.Service[string, journal.Recording]
	runtime      *Runtime
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	s.runtime = &Runtime{
		threads:      s.config.Engine.Threads,
		recordingDAO: s.recordingDAO,
	}
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.recordingDAO == nil {
		if baseURL := s.config.Recording.BaseURL; baseURL != "" {
			store, err := rfs.New(baseURL)
			if err == nil {
				s.recordingDAO = store
			} else {
				slog.Warn("falling back to in-memory recording store", "baseURL", baseURL, "err", err)
			}
		}
	}
	if s.recordingDAO == nil {
		s.recordingDAO = rmemory.New()
	}
}

// Runtime returns the run handle shared by every computation started
// through this service.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// New creates a new engine service.
func New(options ...Option) *Service {
	ret := &Service{config: DefaultConfig()}
	ret.init(options)
	return ret
}
