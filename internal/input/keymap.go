package input

// KeyMap maps raw key codes to logical keys.
type KeyMap map[int32]Key

// Raw key codes. Values match GLFW (and therefore raylib) key codes: printable keys use their
// ASCII value.
const (
	RawW     int32 = 87
	RawA     int32 = 65
	RawS     int32 = 83
	RawD     int32 = 68
	RawRight int32 = 262
	RawLeft  int32 = 263
	RawDown  int32 = 264
	RawUp    int32 = 265
)

// DefaultKeyMap drives with WASD and the arrow keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		RawW:     Forward,
		RawUp:    Forward,
		RawS:     Backward,
		RawDown:  Backward,
		RawA:     Left,
		RawLeft:  Left,
		RawD:     Right,
		RawRight: Right,
	}
}

// RawCodes returns the raw codes in m, for pollers that must ask the window system per key.
func (m KeyMap) RawCodes() []int32 {
	out := make([]int32, 0, len(m))
	for raw := range m {
		out = append(out, raw)
	}
	return out
}
