package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/M00N69/NEOREVIEW/pkg/schema"
)

var (
	// ErrNotFound reports an unknown session id.
	ErrNotFound = errors.New("session introuvable")
	// ErrUnknownKey reports a commentary key that matches no profile field
	// or requirement of the session.
	ErrUnknownKey = errors.New("aucun enregistrement ne porte cette clé")
)

// Store is a mutex-guarded session registry. All reads and writes on a
// Session go through it; the zero value is not usable, call NewStore.
type Store struct {
	mu   sync.RWMutex
	byID map[string]*Session
}

// NewStore returns an empty registry.
func NewStore() *Store {
	return &Store{byID: make(map[string]*Session)}
}

// Create registers s, assigning its ID and CreatedAt. A nil Commentary is
// replaced by an empty one.
func (st *Store) Create(s *Session) string {
	st.mu.Lock()
	defer st.mu.Unlock()

	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	if s.Commentary == nil {
		s.Commentary = schema.NewCommentary()
	}
	st.byID[s.ID] = s
	return s.ID
}

// View runs fn with the session under a read lock. fn must not mutate the
// session and must not retain it past the call.
func (st *Store) View(id string, fn func(*Session) error) error {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.byID[id]
	if !ok {
		return ErrNotFound
	}
	return fn(s)
}

// Update runs fn with the session under the write lock.
func (st *Store) Update(id string, fn func(*Session) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.byID[id]
	if !ok {
		return ErrNotFound
	}
	return fn(s)
}

// Delete removes the session. Deleting an unknown id is an error.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.byID[id]; !ok {
		return ErrNotFound
	}
	delete(st.byID, id)
	return nil
}

// IDs lists the registered session ids, oldest first.
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ids := make([]string, 0, len(st.byID))
	for id := range st.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := st.byID[ids[i]], st.byID[ids[j]]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return ids
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.byID)
}

// SetProfileComment attaches a comment to a profile field. The label must
// exist in the session's profile.
func (st *Store) SetProfileComment(id, label string, com schema.Comment) error {
	return st.Update(id, func(s *Session) error {
		if !s.HasProfileLabel(label) {
			return ErrUnknownKey
		}
		if com.Empty() {
			delete(s.Commentary.Profile, label)
			return nil
		}
		s.Commentary.Profile[label] = com
		return nil
	})
}

// SetChecklistComment attaches a comment to a checklist requirement by Num.
func (st *Store) SetChecklistComment(id, num string, com schema.Comment) error {
	return st.Update(id, func(s *Session) error {
		if !s.HasRequirement(num) {
			return ErrUnknownKey
		}
		if com.Empty() {
			delete(s.Commentary.Checklist, num)
			return nil
		}
		s.Commentary.Checklist[num] = com
		return nil
	})
}

// SetActionComment attaches an action-plan comment to a non-conformity by
// Num. The status must be one of the accepted values.
func (st *Store) SetActionComment(id, num string, com schema.ActionComment) error {
	if !com.Status.Valid() {
		return schema.ErrInvalidStatus
	}
	return st.Update(id, func(s *Session) error {
		if !s.HasNonConformity(num) {
			return ErrUnknownKey
		}
		if com.Empty() {
			delete(s.Commentary.NonConformities, num)
			return nil
		}
		s.Commentary.NonConformities[num] = com
		return nil
	})
}
