package pipeline

import "sync"

// Store keeps the latest run per interactive session. Re-running a session
// overwrites its entry; ending a session deletes it. Only the orchestrator's
// caller writes; presentation reads.
type Store struct {
	m sync.Map // session id -> *Run
}

func NewStore() *Store { return &Store{} }

func (s *Store) Put(session string, r *Run) { s.m.Store(session, r) }

func (s *Store) Get(session string) (*Run, bool) {
	v, ok := s.m.Load(session)
	if !ok {
		return nil, false
	}
	return v.(*Run), true
}

func (s *Store) Delete(session string) { s.m.Delete(session) }
