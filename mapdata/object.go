package mapdata

// ObjType identifies the kind of a map object.
type ObjType int

const (
	TypeVertex ObjType = iota
	TypeLine
	TypeSide
	TypeSector
	TypeThing
)

func (t ObjType) String() string {
	switch t {
	case TypeVertex:
		return "vertex"
	case TypeLine:
		return "line"
	case TypeSide:
		return "side"
	case TypeSector:
		return "sector"
	case TypeThing:
		return "thing"
	}
	return "unknown"
}

// Object is implemented by *Vertex, *Line, *Side, *Sector and *Thing only.
type Object interface {
	ID() int
	Index() int
	Type() ObjType
	IsInMap() bool
	ModifiedTime() int64
	Filtered() bool
	SetFiltered(bool)
	ParentMap() *Map
	CopyProps(from Object)

	Prop(name string) (Value, bool)
	HasProp(name string) bool
	BoolProp(name string) bool
	IntProp(name string) int
	FloatProp(name string) float64
	StringProp(name string) string
	SetProp(name string, v Value)
	SetBoolProp(name string, b bool)
	SetIntProp(name string, i int)
	SetFloatProp(name string, f float64)
	SetStringProp(name string, s string)
	Properties() Properties

	Backup() *Backup
	Restore(b *Backup)

	base() *objBase
	builtinProp(name string) (Value, bool)
	setBuiltinProp(name string, v Value) bool
	writeBuiltins(p Properties)
	readBuiltins(p Properties)
}

// objBase carries the state shared by every map object.
type objBase struct {
	self     Object
	parent   *Map
	id       int
	index    int
	inMap    bool
	modified int64
	filtered bool
	props    Properties
}

func (o *objBase) base() *objBase { return o }
func (o *objBase) ID() int { return o.id }
func (o *objBase) Index() int { return o.index }
func (o *objBase) IsInMap() bool { return o.inMap }
func (o *objBase) ModifiedTime() int64 { return o.modified }
func (o *objBase) Filtered() bool { return o.filtered }
func (o *objBase) SetFiltered(f bool) { o.filtered = f }
func (o *objBase) ParentMap() *Map { return o.parent }

// setModified marks the object as modified. If the parent map has a property backup
// window open and the object has not been touched since it opened, the pre-change
// state is captured first.
func (o *objBase) setModified() {
	m := o.parent
	if m == nil {
		return
	}
	if m.backupOpen && o.modified <= m.backupStart {
		if _, ok := m.backups[o.id]; !ok {
			m.backups[o.id] = o.self.Backup()
		}
	}
	o.modified = m.tick()
}

func (o *objBase) Prop(name string) (Value, bool) {
	if v, ok := o.self.builtinProp(name); ok {
		return v, true
	}
	v, ok := o.props[name]
	return v, ok
}

func (o *objBase) HasProp(name string) bool {
	_, ok := o.Prop(name)
	return ok
}

func (o *objBase) BoolProp(name string) bool {
	v, _ := o.Prop(name)
	return v.AsBool()
}

func (o *objBase) IntProp(name string) int {
	v, _ := o.Prop(name)
	return v.AsInt()
}

func (o *objBase) FloatProp(name string) float64 {
	v, _ := o.Prop(name)
	return v.AsFloat()
}

func (o *objBase) StringProp(name string) string {
	v, _ := o.Prop(name)
	return v.AsString()
}

// SetProp sets a property. Setting a property to its current value is not a modification.
func (o *objBase) SetProp(name string, v Value) {
	if cur, ok := o.Prop(name); ok && cur == v {
		return
	}
	o.setModified()
	if o.self.setBuiltinProp(name, v) {
		return
	}
	if o.props == nil {
		o.props = Properties{}
	}
	o.props[name] = v
}

func (o *objBase) SetBoolProp(name string, b bool) { o.SetProp(name, BoolValue(b)) }
func (o *objBase) SetIntProp(name string, i int) { o.SetProp(name, IntValue(i)) }
func (o *objBase) SetFloatProp(name string, f float64) { o.SetProp(name, FloatValue(f)) }
func (o *objBase) SetStringProp(name string, s string) { o.SetProp(name, StringValue(s)) }

// Properties returns a copy of every property of the object, built-in ones included.
func (o *objBase) Properties() Properties {
	p := o.props.Clone()
	o.self.writeBuiltins(p)
	return p
}

// CopyProps replaces the non built-in properties with those of another object.
func (o *objBase) CopyProps(from Object) {
	o.setModified()
	o.props = from.base().props.Clone()
}

// Backup is an immutable snapshot of one object's properties.
type Backup struct {
	ID    int
	Type  ObjType
	Props Properties
}

// Equal reports whether two backups describe the same object in the same state.
func (b *Backup) Equal(o *Backup) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.ID == o.ID && b.Type == o.Type && b.Props.Equal(o.Props)
}

func (o *objBase) Backup() *Backup {
	return &Backup{ID: o.id, Type: o.self.Type(), Props: o.Properties()}
}

// Restore loads the object state from a backup. The object id never changes, a backup
// taken from another object is ignored.
func (o *objBase) Restore(b *Backup) {
	if b == nil || b.ID != o.id || b.Type != o.self.Type() {
		return
	}
	props := b.Props.Clone()
	o.self.readBuiltins(props)
	o.props = props
	if m := o.parent; m != nil {
		o.modified = m.tick()
		switch o.self.(type) {
		case *Vertex, *Line:
			m.geometryUpdated = o.modified
		case *Thing:
			m.thingsUpdated = o.modified
		}
	}
}
