// Package session tracks the signed-in user for one running client.
package session

import "sync"

// Session holds the current user, if any. The zero value is signed out.
type Session struct {
	mu     sync.RWMutex
	userID string
}

// New returns a session signed in as userID, or signed out when it is empty.
func New(userID string) *Session {
	return &Session{userID: userID}
}

func (s *Session) SignIn(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
}

func (s *Session) SignOut() {
	s.SignIn("")
}

// CurrentUserID returns the signed-in user and whether there is one.
func (s *Session) CurrentUserID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.userID != ""
}
