package input

import "sort"

// Key is a logical key the scene reacts to. Raw key codes are mapped onto these by a KeyMap.
type Key int

const (
	KeyNone Key = iota
	Forward
	Backward
	Left
	Right
)

func (k Key) String() string {
	switch k {
	case Forward:
		return "Forward"
	case Backward:
		return "Backward"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "None"
	}
}

// Kind identifies an event on the bus.
type Kind int

const (
	Wheel Kind = iota + 1
	Click
	KeyDown
	KeyUp
	CursorMove
)

// Event is one normalized input event. Only the fields for its Kind are set:
// Wheel carries Dir (+1 scroll down/advance, -1 up/retreat), KeyDown/KeyUp carry Key,
// CursorMove carries X/Y in [-0.5, 0.5] relative to the screen center.
type Event struct {
	Kind Kind
	Dir  int
	Key  Key
	X, Y float32
}

// Handler receives events published on the bus.
type Handler func(Event)

// Subscription is returned by Subscribe; pass it to Unsubscribe to stop receiving events.
type Subscription int

// Bus normalizes raw input into events and keeps the held-key state readable at any time.
// Publishing is synchronous: subscribers run on the caller's goroutine, in subscription order,
// between frames. Unknown raw keys are ignored.
type Bus struct {
	keys     KeyMap
	held     map[Key]bool
	cursorX  float32
	cursorY  float32
	nextID   Subscription
	handlers map[Subscription]Handler
}

// NewBus returns a bus that maps raw key codes through keys.
func NewBus(keys KeyMap) *Bus {
	if keys == nil {
		keys = DefaultKeyMap()
	}
	return &Bus{
		keys:     keys,
		held:     make(map[Key]bool),
		handlers: make(map[Subscription]Handler),
	}
}

// Subscribe registers h for every event published after this call.
func (b *Bus) Subscribe(h Handler) Subscription {
	b.nextID++
	b.handlers[b.nextID] = h
	return b.nextID
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(s Subscription) {
	delete(b.handlers, s)
}

// Keys returns the bus's key map.
func (b *Bus) Keys() KeyMap {
	return b.keys
}

// Subscribers returns the number of registered handlers.
func (b *Bus) Subscribers() int {
	return len(b.handlers)
}

// Wheel publishes a scroll event from a raw wheel delta. Only the sign matters:
// positive deltas advance, negative retreat, zero is dropped.
func (b *Bus) Wheel(deltaY float32) {
	dir := 0
	switch {
	case deltaY > 0:
		dir = 1
	case deltaY < 0:
		dir = -1
	}
	if dir == 0 {
		return
	}
	b.publish(Event{Kind: Wheel, Dir: dir})
}

// Click publishes a click event.
func (b *Bus) Click() {
	b.publish(Event{Kind: Click})
}

// KeyDown marks the mapped key held and publishes KeyDown. Repeats while held are not re-published.
func (b *Bus) KeyDown(raw int32) {
	k, ok := b.keys[raw]
	if !ok {
		return
	}
	if b.held[k] {
		return
	}
	b.held[k] = true
	b.publish(Event{Kind: KeyDown, Key: k})
}

// KeyUp clears the mapped key and publishes KeyUp.
func (b *Bus) KeyUp(raw int32) {
	k, ok := b.keys[raw]
	if !ok {
		return
	}
	if !b.held[k] {
		return
	}
	b.held[k] = false
	b.publish(Event{Kind: KeyUp, Key: k})
}

// Cursor records the cursor position normalized to [-0.5, 0.5] on both axes (y grows downward).
func (b *Bus) Cursor(x, y, width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	b.cursorX = x/width - 0.5
	b.cursorY = y/height - 0.5
	b.publish(Event{Kind: CursorMove, X: b.cursorX, Y: b.cursorY})
}

// CursorOffset returns the last normalized cursor position.
func (b *Bus) CursorOffset() (x, y float32) {
	return b.cursorX, b.cursorY
}

// Held reports whether a logical key is currently down.
func (b *Bus) Held(k Key) bool {
	return b.held[k]
}

// Release clears every held key without publishing (e.g. when the window loses focus or the console opens).
func (b *Bus) Release() {
	for k := range b.held {
		b.held[k] = false
	}
}

func (b *Bus) publish(ev Event) {
	ids := make([]int, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		if h, ok := b.handlers[Subscription(id)]; ok {
			h(ev)
		}
	}
}
