package pype

import "sync"

// Session carries the state that outlives one pipeline run, such as the last
// directory a stage browsed to. Interactive front-ends keep one per user.
type Session struct {
	mu             sync.Mutex
	lastVisitedDir string
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) LastVisitedDir() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastVisitedDir
}

func (s *Session) SetLastVisitedDir(dir string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastVisitedDir = dir
}
