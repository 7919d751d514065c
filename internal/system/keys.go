package system

// Key is a Linux input-event-codes.h key code.
type Key uint16

const (
	KeyEsc   Key = 1
	KeyF4    Key = 62
	KeyHome  Key = 102
	KeyLeft  Key = 105
	KeyRight Key = 106
	KeyEnd   Key = 107
)

// KeyAction is what the framebuffer preview does for a key press.
type KeyAction int

const (
	ActionNone KeyAction = iota
	ActionPrev
	ActionNext
	ActionFirst
	ActionLast
	ActionExit
)

// ActionFor maps a pressed key to a preview action.
func ActionFor(k Key) KeyAction {
	switch k {
	case KeyLeft:
		return ActionPrev
	case KeyRight:
		return ActionNext
	case KeyHome:
		return ActionFirst
	case KeyEnd:
		return ActionLast
	case KeyF4, KeyEsc:
		return ActionExit
	}
	return ActionNone
}

// Step returns the card index an action selects out of count cards.
// Prev and Next wrap around.
func Step(action KeyAction, current, count int) int {
	if count <= 0 {
		return -1
	}
	switch action {
	case ActionPrev:
		return (current - 1 + count) % count
	case ActionNext:
		return (current + 1) % count
	case ActionFirst:
		return 0
	case ActionLast:
		return count - 1
	}
	return current
}
