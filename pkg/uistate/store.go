package uistate

import (
	"log/slog"
	"sync"
	"time"
)

type StoreConfig struct {
	IdleTimeout time.Duration
}

/*
Store keeps one ViewerState per viewer ID. State that hasn't been touched
for IdleTimeout is dropped by the cleanup routine.
*/
type Store struct {
	mu          sync.Mutex
	viewers     map[string]*ViewerState
	idleTimeout time.Duration
	now         func() time.Time

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	wg            *sync.WaitGroup
}

func NewStore(config StoreConfig) *Store {
	// Default to a day of inactivity
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = 24 * time.Hour
	}

	return &Store{
		viewers:     map[string]*ViewerState{},
		idleTimeout: config.IdleTimeout,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
		wg:          &sync.WaitGroup{},
	}
}

/*
Get returns the state for viewerID, creating it on first use.
*/
func (s *Store) Get(viewerID string) *ViewerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.viewers[viewerID]

	if !ok {
		state = NewViewerState()
		s.viewers[viewerID] = state
	}

	state.touch(s.now())
	return state
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.viewers)
}

/*
ForgetAlbum clears state tied to albumName for every viewer.
*/
func (s *Store) ForgetAlbum(albumName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, state := range s.viewers {
		state.ForgetAlbum(albumName)
	}
}

/*
EvictIdle removes viewers idle longer than the configured timeout and
returns how many were removed.
*/
func (s *Store) EvictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0

	for id, state := range s.viewers {
		if state.idleSince(now) > s.idleTimeout {
			delete(s.viewers, id)
			removed++
		}
	}

	return removed
}

// StartCleanupRoutine starts a periodic routine to evict idle viewer state
func (s *Store) StartCleanupRoutine(interval time.Duration) {
	s.stopCleanup = make(chan struct{})
	s.cleanupTicker = time.NewTicker(interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case <-s.cleanupTicker.C:
				removed := s.EvictIdle()
				slog.Debug("evicted idle viewer state", "removed", removed, "remaining", s.Len())
			case <-s.stopCleanup:
				s.cleanupTicker.Stop()
				return
			}
		}
	}()

	slog.Info("viewer state cleanup routine started", "interval", interval, "idleTimeout", s.idleTimeout)
}

// StopCleanupRoutine stops the cleanup routine
func (s *Store) StopCleanupRoutine() {
	if s.cleanupTicker != nil {
		close(s.stopCleanup)
		s.wg.Wait()
		s.cleanupTicker = nil
		slog.Info("viewer state cleanup routine stopped")
	}
}
