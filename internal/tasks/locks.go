package tasks

import "sync"

// syncLocks serializes sync passes. A per-user pass holds the shared side of global plus
// that user's mutex; an all-users pass holds global exclusively.
type syncLocks struct {
	global sync.RWMutex

	mu    sync.Mutex
	users map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newSyncLocks() *syncLocks {
	return &syncLocks{users: make(map[string]*userLock)}
}

// lock acquires the locks for userID ("" = all users) and returns the release func.
func (l *syncLocks) lock(userID string) func() {
	if userID == "" {
		l.global.Lock()
		return l.global.Unlock
	}

	l.global.RLock()

	l.mu.Lock()
	ul, ok := l.users[userID]
	if !ok {
		ul = &userLock{}
		l.users[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()

		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.users, userID)
		}
		l.mu.Unlock()

		l.global.RUnlock()
	}
}
