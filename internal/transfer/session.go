package transfer

import (
	"sync"
	"time"

	"fintrack/internal/core"
)

// Form is the editable state of the transfer form.
type Form struct {
	Date            core.Date
	SourceAccountID string
	TargetAccountID string
	Amount          string
	Notes           string
}

// Session holds one user's transfer dialog: whether it is open, which
// account it was opened from and the current form values.
type Session struct {
	mu                sync.Mutex
	open              bool
	preselectedSource string
	form              Form
}

// NewSession returns a closed session.
func NewSession() *Session {
	return &Session{}
}

// Open opens the dialog with sourceAccountID preselected and a fresh form.
func (s *Session) Open(sourceAccountID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.preselectedSource = sourceAccountID
	s.form = s.defaults(now)
}

// Close closes the dialog and clears the preselected source. Closing a
// closed session does nothing.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.preselectedSource = ""
}

// IsOpen reports whether the dialog is open.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// PreselectedSource is the account the dialog was opened from.
func (s *Session) PreselectedSource() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preselectedSource
}

// Form returns a copy of the current form values.
func (s *Session) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SetForm stores the values the user typed so a rejected submit can be
// re-rendered as entered.
func (s *Session) SetForm(f Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
}

// ResetForm restores the defaults: today's date, the preselected source and
// empty target, amount and notes.
func (s *Session) ResetForm(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = s.defaults(now)
}

// complete resets the form and closes the dialog in one step.
func (s *Session) complete(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = s.defaults(now)
	s.open = false
	s.preselectedSource = ""
}

func (s *Session) defaults(now time.Time) Form {
	return Form{
		Date:            core.DateOf(now),
		SourceAccountID: s.preselectedSource,
	}
}

// SessionStore keeps one session per user.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Get returns the user's session, creating a closed one on first use.
func (st *SessionStore) Get(userID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	if !ok {
		s = NewSession()
		st.sessions[userID] = s
	}
	return s
}

// Delete drops the user's session.
func (st *SessionStore) Delete(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}

// Len returns the number of tracked sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
