// Package mapeditor is the editing engine of the map editor: edit modes, hilight and
// selection, tag resolution, undo recording and the geometry editing gestures (move, line
// draw, sector creation) plus 3D mode editing.
package mapeditor

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/stuarthighley/doomedit/gameconfig"
	"github.com/stuarthighley/doomedit/mapdata"
	"github.com/stuarthighley/doomedit/undo"
)

type Mode int

const (
	ModeVertices Mode = iota
	ModeLines
	ModeSectors
	ModeThings
	Mode3D
)

func (m Mode) String() string {
	switch m {
	case ModeVertices:
		return "Vertices"
	case ModeLines:
		return "Lines"
	case ModeSectors:
		return "Sectors"
	case ModeThings:
		return "Things"
	case Mode3D:
		return "3D"
	}
	return "Unknown"
}

// SectorMode selects which sector planes sector mode operations apply to.
type SectorMode int

const (
	SectorBoth SectorMode = iota
	SectorFloor
	SectorCeiling
)

func (m SectorMode) String() string {
	switch m {
	case SectorFloor:
		return "Floors"
	case SectorCeiling:
		return "Ceilings"
	}
	return "Both"
}

// PropertiesPanel is told which objects to display when the hilight or selection changes.
type PropertiesPanel interface {
	OpenObjects(objs []mapdata.Object)
}

// Session is one map being edited.
type Session struct {
	m    *mapdata.Map
	cfg  *gameconfig.Configuration
	opts Options

	mode       Mode
	sectorMode SectorMode
	panel      PropertiesPanel
	messages   []string

	// Hilight and selection
	hilight       int
	hilightLocked bool
	selection     []int
	hilight3D     Item3D
	selection3D   []Item3D
	tags          TagSets

	// Undo
	undo2D     *undo.Manager
	undo3D     *undo.Manager
	lockedName string

	gridLevel int

	move     moveState
	lineDraw []orb.Point
	drawing  bool
	tagEdit  tagEditState

	// 3D mode
	link3D       bool
	TextureWidth func(name string) int
}

// NewSession starts editing m against the game configuration cfg.
func NewSession(m *mapdata.Map, cfg *gameconfig.Configuration, opts Options) *Session {
	s := &Session{
		m:         m,
		cfg:       cfg,
		opts:      opts,
		hilight:   -1,
		hilight3D: noItem3D,
		undo2D:    undo.NewMapManager(m),
		undo3D:    undo.NewMapManager(m),
		link3D:    true,
	}
	s.SetGridLevel(opts.GridLevel)
	return s
}

func (s *Session) Map() *mapdata.Map { return s.m }
func (s *Session) Config() *gameconfig.Configuration { return s.cfg }
func (s *Session) Options() Options { return s.opts }
func (s *Session) Mode() Mode { return s.mode }
func (s *Session) SectorMode() SectorMode { return s.sectorMode }

// SetPropertiesPanel sets the collaborator notified of hilight and selection changes.
func (s *Session) SetPropertiesPanel(p PropertiesPanel) { s.panel = p }

// SetEditMode changes the edit mode. Setting sectors mode again cycles the sector mode.
func (s *Session) SetEditMode(mode Mode) {
	if mode == s.mode {
		if mode == ModeSectors {
			s.sectorMode = (s.sectorMode + 1) % 3
			s.AddMessage(fmt.Sprintf("Sectors mode (%s)", s.sectorMode))
		}
		return
	}

	s.EndMove(false)
	s.EndLineDraw(false)
	if s.tagEdit.active {
		s.EndTagEdit(false)
	}
	if s.undo2D.CurrentlyRecording() {
		s.undo2D.EndRecord(true)
	}
	if s.mode == Mode3D {
		s.undo3D.Clear()
	}

	logger.Printf("Edit mode %v -> %v", s.mode, mode)
	s.mode = mode
	if mode == ModeSectors {
		s.sectorMode = SectorBoth
	}
	s.hilight = -1
	s.hilightLocked = false
	s.selection = nil
	s.hilight3D = noItem3D
	s.selection3D = nil
	s.tags = TagSets{}
	s.lockedName = ""
	s.AddMessage(fmt.Sprintf("%s mode", mode))
}

// AddMessage queues a status message for the user. Only the newest messages are kept.
func (s *Session) AddMessage(msg string) {
	s.messages = append(s.messages, msg)
	if n := s.opts.MaxMessages; n > 0 && len(s.messages) > n {
		s.messages = s.messages[len(s.messages)-n:]
	}
}

// Messages returns the queued status messages, oldest first.
func (s *Session) Messages() []string { return s.messages }

// LastMessage returns the newest status message.
func (s *Session) LastMessage() string {
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}

func (s *Session) ClearMessages() { s.messages = nil }

// /////////////////////////////////////
// Undo
// /////////////////////////////////////

// UndoManager returns the undo manager of the current mode. 3D mode has its own.
func (s *Session) UndoManager() *undo.Manager {
	if s.mode == Mode3D {
		return s.undo3D
	}
	return s.undo2D
}

// BeginUndoRecord starts recording an undo level for the current mode.
func (s *Session) BeginUndoRecord(name string) error {
	if err := s.UndoManager().BeginRecord(name); err != nil {
		return err
	}
	s.lockedName = ""
	logger.Printf("Begin undo record %q", name)
	return nil
}

// BeginUndoRecordLocked is BeginUndoRecord for operations that are usually repeated in
// quick succession, like key-repeat light changes. Repeating the same operation extends the
// previous undo level instead of adding one.
func (s *Session) BeginUndoRecordLocked(name string) error {
	um := s.UndoManager()
	if s.lockedName == name {
		resumed, err := um.ResumeRecord(name)
		if err != nil {
			return err
		}
		if resumed {
			logger.Printf("Resume undo record %q", name)
			return nil
		}
	}
	if err := um.BeginRecord(name); err != nil {
		return err
	}
	s.lockedName = name
	logger.Printf("Begin locked undo record %q", name)
	return nil
}

// EndUndoRecord finishes the current undo level. It reports whether a level was added.
func (s *Session) EndUndoRecord(success bool) bool {
	um := s.UndoManager()
	name := um.CurrentName()
	added := um.EndRecord(success)
	logger.Printf("End undo record %q (success %v, recorded %v)", name, success, added)
	return added
}

// Undo undoes the last level of the current mode and returns its name.
func (s *Session) Undo() string {
	return s.undoRedo(true)
}

// Redo redoes the last undone level of the current mode and returns its name.
func (s *Session) Redo() string {
	return s.undoRedo(false)
}

func (s *Session) undoRedo(isUndo bool) string {
	um := s.UndoManager()
	if um.CurrentlyRecording() || s.move.active || s.drawing {
		return ""
	}
	s.lockedName = ""
	s.clearSelection()
	s.hilight = -1
	s.hilight3D = noItem3D
	s.tags = TagSets{}

	var name, verb string
	if isUndo {
		name, verb = um.Undo(), "undo"
	} else {
		name, verb = um.Redo(), "redo"
	}
	if name == "" {
		s.AddMessage("Nothing to " + verb)
		return ""
	}
	s.m.RefreshConnections()
	if isUndo {
		s.AddMessage("Undo: " + name)
	} else {
		s.AddMessage("Redo: " + name)
	}
	logger.Printf("%s %q", verb, name)
	return name
}

// record runs fn inside an undo level named name.
func (s *Session) record(name string, fn func() bool) bool {
	if err := s.BeginUndoRecord(name); err != nil {
		logger.Println(err)
		s.AddMessage(err.Error())
		return false
	}
	return s.EndUndoRecord(fn())
}

// recordLocked is record with BeginUndoRecordLocked.
func (s *Session) recordLocked(name string, fn func() bool) bool {
	if err := s.BeginUndoRecordLocked(name); err != nil {
		logger.Println(err)
		s.AddMessage(err.Error())
		return false
	}
	return s.EndUndoRecord(fn())
}
