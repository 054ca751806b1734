package client

import "sync"

// Session holds the access token for one signed-in user. The zero value is an
// empty session. Safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	token string
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Session) Clear() {
	s.Set("")
}

// Active reports whether an access token is held.
func (s *Session) Active() bool {
	return s.Token() != ""
}
