// Package undo implements a linear undo/redo history of named levels. Each level groups the
// steps recorded between BeginRecord and EndRecord.
package undo

import (
	"errors"
	"fmt"
)

var ErrAlreadyRecording = errors.New("undo record already in progress")

// Step is one reversible change. DoUndo and DoRedo report whether they succeeded, IsOk
// reports whether the step actually records anything.
type Step interface {
	DoUndo() bool
	DoRedo() bool
	IsOk() bool
}

// Level is a named group of steps undone and redone together.
type Level struct {
	name  string
	steps []Step
}

func (l *Level) Name() string { return l.name }
func (l *Level) Steps() []Step { return l.steps }

func (l *Level) doUndo() bool {
	ok := true
	for i := len(l.steps) - 1; i >= 0; i-- {
		if !l.steps[i].DoUndo() {
			ok = false
		}
	}
	return ok
}

func (l *Level) doRedo() bool {
	ok := true
	for _, s := range l.steps {
		if !s.DoRedo() {
			ok = false
		}
	}
	return ok
}

// Manager holds the undo and redo stacks.
type Manager struct {
	done    []*Level
	undone  []*Level
	current *Level
	resumed int // steps the current level had when it was resumed, -1 for a new level

	// Optional hooks run when a record is opened and before it is closed. OnEnd gets the
	// steps recorded explicitly and returns any extra steps to add. Map undo managers use
	// them to open and collect the property backup window.
	OnBegin func()
	OnEnd   func(success bool, recorded []Step) []Step
}

func NewManager() *Manager {
	return &Manager{}
}

// BeginRecord starts recording a new level.
func (m *Manager) BeginRecord(name string) error {
	if m.current != nil {
		return fmt.Errorf("begin %q while recording %q: %w", name, m.current.name, ErrAlreadyRecording)
	}
	m.current = &Level{name: name}
	m.resumed = -1
	if m.OnBegin != nil {
		m.OnBegin()
	}
	return nil
}

// ResumeRecord reopens the last undo level for recording when it has the given name, so
// that a repeated operation extends it instead of adding a level. It reports whether the
// level was reopened; if not, nothing was started.
func (m *Manager) ResumeRecord(name string) (bool, error) {
	if m.current != nil {
		return false, fmt.Errorf("resume %q while recording %q: %w", name, m.current.name, ErrAlreadyRecording)
	}
	if len(m.done) == 0 || len(m.undone) > 0 || m.done[len(m.done)-1].name != name {
		return false, nil
	}
	m.current = m.done[len(m.done)-1]
	m.done = m.done[:len(m.done)-1]
	m.resumed = len(m.current.steps)
	if m.OnBegin != nil {
		m.OnBegin()
	}
	return true, nil
}

// RecordStep adds a step to the level being recorded. Steps outside a record are dropped.
func (m *Manager) RecordStep(s Step) bool {
	if m.current == nil || s == nil {
		return false
	}
	m.current.steps = append(m.current.steps, s)
	return true
}

// EndRecord finishes the current level. The level is kept only if success is set and at
// least one of its steps records a change, in which case the redo stack is cleared.
// It reports whether a level was added.
func (m *Manager) EndRecord(success bool) bool {
	if m.current == nil {
		return false
	}
	level := m.current
	m.current = nil
	if m.OnEnd != nil {
		level.steps = append(level.steps, m.OnEnd(success, level.steps)...)
	}
	if !success {
		if m.resumed >= 0 {
			level.steps = level.steps[:m.resumed]
			m.done = append(m.done, level)
		}
		return false
	}

	steps := level.steps[:0]
	for _, s := range level.steps {
		if s != nil && s.IsOk() {
			steps = append(steps, s)
		}
	}
	level.steps = steps
	if len(steps) == 0 {
		return false
	}

	m.done = append(m.done, level)
	m.undone = nil
	return true
}

// CurrentlyRecording reports whether a record is open.
func (m *Manager) CurrentlyRecording() bool { return m.current != nil }

// CurrentName returns the name of the level being recorded.
func (m *Manager) CurrentName() string {
	if m.current == nil {
		return ""
	}
	return m.current.name
}

// Undo undoes the last level and returns its name, or "" if there was nothing to undo.
func (m *Manager) Undo() string {
	if len(m.done) == 0 || m.current != nil {
		return ""
	}
	level := m.done[len(m.done)-1]
	m.done = m.done[:len(m.done)-1]
	level.doUndo()
	m.undone = append(m.undone, level)
	return level.name
}

// Redo redoes the last undone level and returns its name, or "" if there was nothing to redo.
func (m *Manager) Redo() string {
	if len(m.undone) == 0 || m.current != nil {
		return ""
	}
	level := m.undone[len(m.undone)-1]
	m.undone = m.undone[:len(m.undone)-1]
	level.doRedo()
	m.done = append(m.done, level)
	return level.name
}

func (m *Manager) CanUndo() bool { return len(m.done) > 0 }
func (m *Manager) CanRedo() bool { return len(m.undone) > 0 }
func (m *Manager) NUndoLevels() int { return len(m.done) }
func (m *Manager) NRedoLevels() int { return len(m.undone) }

// UndoLevelName returns the name of the level Undo would undo next.
func (m *Manager) UndoLevelName() string {
	if len(m.done) == 0 {
		return ""
	}
	return m.done[len(m.done)-1].name
}

// RedoLevelName returns the name of the level Redo would redo next.
func (m *Manager) RedoLevelName() string {
	if len(m.undone) == 0 {
		return ""
	}
	return m.undone[len(m.undone)-1].name
}

// LevelNames lists the history oldest first: every undoable level followed by the redoable
// ones in the order they would be redone.
func (m *Manager) LevelNames() []string {
	names := make([]string, 0, len(m.done)+len(m.undone))
	for _, l := range m.done {
		names = append(names, l.name)
	}
	for i := len(m.undone) - 1; i >= 0; i-- {
		names = append(names, m.undone[i].name)
	}
	return names
}

// Clear drops all history and any record in progress.
func (m *Manager) Clear() {
	if m.current != nil && m.OnEnd != nil {
		m.OnEnd(false, nil)
	}
	m.done = nil
	m.undone = nil
	m.current = nil
}
