package app

import (
	"sync"
	"time"

	"notesflow/internal/dashboard/store"
)

type session struct {
	st        *store.Store
	fromCache bool
	seen      time.Time
}

// Sessions хранит отдельный список заметок для каждого пользователя.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*session
}

// NewSessions создает пустой набор сессий.
func NewSessions() *Sessions {
	return &Sessions{entries: make(map[string]*session)}
}

// Get возвращает список пользователя, создавая его при первом обращении.
// Каждое обращение продлевает жизнь сессии.
func (s *Sessions) Get(userID string) *store.Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		e = &session{st: store.New()}
		s.entries[userID] = e
	}
	e.seen = time.Now()
	return e.st
}

// Drop забывает список пользователя.
func (s *Sessions) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// Len возвращает количество сессий.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Expire удаляет сессии, к которым не обращались дольше maxIdle, и возвращает их пользователей.
func (s *Sessions) Expire(now time.Time, maxIdle time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []string
	for id, e := range s.entries {
		if now.Sub(e.seen) > maxIdle {
			delete(s.entries, id)
			expired = append(expired, id)
		}
	}
	return expired
}

// Each вызывает fn для каждой сессии. Набор сессий копируется до вызовов.
func (s *Sessions) Each(fn func(userID string, st *store.Store)) {
	s.mu.Lock()
	snapshot := make(map[string]*store.Store, len(s.entries))
	for id, e := range s.entries {
		snapshot[id] = e.st
	}
	s.mu.Unlock()

	for id, st := range snapshot {
		fn(id, st)
	}
}

// markSource запоминает, откуда загружен список: из кэша или из backend.
func (s *Sessions) markSource(userID string, fromCache bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[userID]; ok {
		e.fromCache = fromCache
	}
}

// fromCache сообщает, что список пользователя еще не сверялся с backend.
func (s *Sessions) fromCache(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	return ok && e.fromCache
}
