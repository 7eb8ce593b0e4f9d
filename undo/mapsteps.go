package undo

import (
	"github.com/stuarthighley/doomedit/mapdata"
)

// NewMapManager returns a manager that records map changes passively. Opening a record
// opens the map's property backup window and clears its created/deleted ledger. Closing it
// turns the modified objects and the ledger into steps.
func NewMapManager(m *mapdata.Map) *Manager {
	um := NewManager()
	um.OnBegin = func() {
		m.BeginPropBackup()
		m.ClearCreatedDeleted()
	}
	um.OnEnd = func(success bool, recorded []Step) []Step {
		backups := m.EndPropBackup()
		if !success {
			return nil
		}
		explicit := map[int]bool{}
		for _, s := range recorded {
			if pc, ok := s.(*PropertyChange); ok {
				explicit[pc.backup.ID] = true
			}
		}
		var implicit []*mapdata.Backup
		for _, b := range backups {
			if !explicit[b.ID] {
				implicit = append(implicit, b)
			}
		}
		return []Step{NewMultiPropertyChange(m, implicit), NewCreateDelete(m)}
	}
	return um
}

// PropertyChange restores one object to the state it was in when the step was created.
type PropertyChange struct {
	m      *mapdata.Map
	backup *mapdata.Backup
}

// NewPropertyChange snapshots obj. Create it before changing the object.
func NewPropertyChange(obj mapdata.Object) *PropertyChange {
	return &PropertyChange{m: obj.ParentMap(), backup: obj.Backup()}
}

func (s *PropertyChange) swap() bool {
	obj := s.m.ObjectByID(s.backup.ID)
	if obj == nil {
		return false
	}
	current := obj.Backup()
	obj.Restore(s.backup)
	s.backup = current
	return true
}

func (s *PropertyChange) DoUndo() bool { return s.swap() }
func (s *PropertyChange) DoRedo() bool { return s.swap() }

// IsOk reports whether the object differs from the snapshot.
func (s *PropertyChange) IsOk() bool {
	if s.m == nil {
		return false
	}
	obj := s.m.ObjectByID(s.backup.ID)
	return obj != nil && !obj.Backup().Equal(s.backup)
}

// MultiPropertyChange swaps a set of objects with their backups.
type MultiPropertyChange struct {
	m       *mapdata.Map
	backups []*mapdata.Backup
}

// NewMultiPropertyChange keeps the backups of objects whose state actually changed.
func NewMultiPropertyChange(m *mapdata.Map, backups []*mapdata.Backup) *MultiPropertyChange {
	s := &MultiPropertyChange{m: m}
	for _, b := range backups {
		if obj := m.ObjectByID(b.ID); obj != nil && !obj.Backup().Equal(b) {
			s.backups = append(s.backups, b)
		}
	}
	return s
}

func (s *MultiPropertyChange) swap() bool {
	for i, b := range s.backups {
		obj := s.m.ObjectByID(b.ID)
		if obj == nil {
			continue
		}
		current := obj.Backup()
		obj.Restore(b)
		s.backups[i] = current
	}
	return true
}

func (s *MultiPropertyChange) DoUndo() bool { return s.swap() }
func (s *MultiPropertyChange) DoRedo() bool { return s.swap() }
func (s *MultiPropertyChange) IsOk() bool { return len(s.backups) > 0 }

// CreateDelete removes created objects on undo and brings deleted ones back, and the
// reverse on redo. Objects are referenced by id since they are never freed.
type CreateDelete struct {
	m       *mapdata.Map
	created []int
	deleted []int
}

// NewCreateDelete captures the map's created/deleted ledger.
func NewCreateDelete(m *mapdata.Map) *CreateDelete {
	return &CreateDelete{m: m, created: m.CreatedIDs(), deleted: m.DeletedIDs()}
}

func (s *CreateDelete) DoUndo() bool {
	for i := len(s.created) - 1; i >= 0; i-- {
		s.m.DetachObject(s.created[i])
	}
	for _, id := range s.deleted {
		s.m.ReattachObject(id)
	}
	s.m.RefreshConnections()
	return true
}

func (s *CreateDelete) DoRedo() bool {
	for i := len(s.deleted) - 1; i >= 0; i-- {
		s.m.DetachObject(s.deleted[i])
	}
	for _, id := range s.created {
		s.m.ReattachObject(id)
	}
	s.m.RefreshConnections()
	return true
}

func (s *CreateDelete) IsOk() bool { return len(s.created)+len(s.deleted) > 0 }

// ValueChange records a change to a plain value held outside the map, such as an editor
// toggle.
type ValueChange[T comparable] struct {
	ptr      *T
	old, new T
}

// SetValue sets *ptr to v and returns the step undoing it.
func SetValue[T comparable](ptr *T, v T) *ValueChange[T] {
	s := &ValueChange[T]{ptr: ptr, old: *ptr, new: v}
	*ptr = v
	return s
}

func (s *ValueChange[T]) DoUndo() bool {
	*s.ptr = s.old
	return true
}

func (s *ValueChange[T]) DoRedo() bool {
	*s.ptr = s.new
	return true
}

func (s *ValueChange[T]) IsOk() bool { return s.old != s.new }
