package active

// Snapshot is a consistent copy of the active playback state.
type Snapshot struct {
	ActiveID      string // empty when nothing is active
	ActiveIndex   int
	AppForeground bool
	ScreenFocused bool
	UserPaused    bool
	Muted         bool
	Rate          float64
	Seeking       bool

	// EffectivePaused is derived by the store; consumers never compute it.
	EffectivePaused bool
}

// HasActive reports whether an item is active.
func (s Snapshot) HasActive() bool {
	return s.ActiveID != ""
}

// IsActive reports whether id is the active item.
func (s Snapshot) IsActive(id string) bool {
	return id != "" && s.ActiveID == id
}

// Field identifies one piece of the state in a Change.
type Field uint16

const (
	FieldActiveID Field = 1 << iota
	FieldActiveIndex
	FieldAppForeground
	FieldScreenFocused
	FieldUserPaused
	FieldMuted
	FieldRate
	FieldSeeking
)

// pauseFields are the inputs of EffectivePaused.
const pauseFields = FieldAppForeground | FieldScreenFocused | FieldUserPaused | FieldSeeking

// String returns the field name.
func (f Field) String() string {
	switch f {
	case FieldActiveID:
		return "ActiveID"
	case FieldActiveIndex:
		return "ActiveIndex"
	case FieldAppForeground:
		return "AppForeground"
	case FieldScreenFocused:
		return "ScreenFocused"
	case FieldUserPaused:
		return "UserPaused"
	case FieldMuted:
		return "Muted"
	case FieldRate:
		return "Rate"
	case FieldSeeking:
		return "Seeking"
	default:
		return "Multiple"
	}
}

// Change describes one atomic write to the store.
type Change struct {
	Previous Snapshot
	Current  Snapshot
	Fields   Field // fields whose value changed
}

// Has reports whether f changed.
func (c Change) Has(f Field) bool {
	return c.Fields&f != 0
}

// ActiveChanged reports whether a different item became active.
func (c Change) ActiveChanged() bool {
	return c.Has(FieldActiveID)
}

// PauseChanged reports whether the effective pause flipped.
func (c Change) PauseChanged() bool {
	return c.Previous.EffectivePaused != c.Current.EffectivePaused
}
