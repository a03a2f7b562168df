// Package store хранит список заметок одной сессии дашборда.
//
// Порядок вставки сохраняется для отображения. Разбиение на активные и
// одобренные заметки вычисляется при каждом чтении из текущей последовательности.
package store

import (
	"sync"

	"notesflow/pkg/workflow"
)

// Counts - размеры разделов списка.
type Counts struct {
	Active   int `json:"active"`
	Approved int `json:"approved"`
}

// Partition - список, разделенный на активные и одобренные заметки.
type Partition struct {
	Active   []*workflow.Note
	Approved []*workflow.Note
}

// Counts возвращает размеры разделов.
func (p Partition) Counts() Counts {
	return Counts{Active: len(p.Active), Approved: len(p.Approved)}
}

// Store - упорядоченный список заметок с индексом по id.
// Наружу отдаются только копии, поэтому вызывающий не может изменить хранимые заметки.
type Store struct {
	mu     sync.RWMutex
	notes  []*workflow.Note
	loaded bool
}

// New создает пустой незагруженный список.
func New() *Store {
	return &Store{}
}

// Reset заменяет содержимое списка результатом загрузки.
func (s *Store) Reset(notes []*workflow.Note) {
	next := make([]*workflow.Note, 0, len(notes))
	for _, n := range notes {
		if n != nil {
			next = append(next, n.Clone())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = next
	s.loaded = true
}

// Loaded сообщает, был ли список загружен хотя бы раз.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Len возвращает количество заметок.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Get возвращает копию заметки по id.
func (s *Store) Get(id string) (*workflow.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return s.notes[i].Clone(), true
}

// Snapshot возвращает копию всей последовательности.
func (s *Store) Snapshot() []*workflow.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*workflow.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

// Replace заменяет заметку с тем же id, сохраняя ее позицию.
// Возвращает false, если такой заметки нет.
func (s *Store) Replace(n *workflow.Note) bool {
	if n == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(n.ID)
	if i < 0 {
		return false
	}
	s.notes[i] = n.Clone()
	return true
}

// Prepend добавляет заметку в начало списка. Существующая запись с тем же id удаляется.
func (s *Store) Prepend(n *workflow.Note) {
	if n == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(n.ID); i >= 0 {
		s.notes = append(s.notes[:i], s.notes[i+1:]...)
	}
	s.notes = append([]*workflow.Note{n.Clone()}, s.notes...)
}

// Remove удаляет заметку по id. Возвращает false, если такой заметки нет.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	return true
}

// Partition делит текущий список на активные и одобренные заметки.
func (s *Store) Partition() Partition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := Partition{
		Active:   make([]*workflow.Note, 0, len(s.notes)),
		Approved: make([]*workflow.Note, 0),
	}
	for _, n := range s.notes {
		if n.IsApproved() {
			p.Approved = append(p.Approved, n.Clone())
		} else {
			p.Active = append(p.Active, n.Clone())
		}
	}
	return p
}

// Counts возвращает размеры разделов без копирования заметок.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Counts
	for _, n := range s.notes {
		if n.IsApproved() {
			c.Approved++
		} else {
			c.Active++
		}
	}
	return c
}

// indexOf вызывается под s.mu.
func (s *Store) indexOf(id string) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
