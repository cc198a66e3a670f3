package keyboard

// evdev key codes
const (
	KeyEscape uint16 = 1

	KeyLeftControl  uint16 = 29
	KeyRightControl uint16 = 97
	KeyLeftShift    uint16 = 42
	KeyRightShift   uint16 = 54
	KeyLeftAlt      uint16 = 56
	KeyRightAlt     uint16 = 100
	KeyLeftSuper    uint16 = 125
	KeyRightSuper   uint16 = 126
	KeyCapsLock     uint16 = 58
	KeyNumLock      uint16 = 69
)

// digitKeys maps evdev key codes of the top row and keypad digits 1-9 to their value
var digitKeys = map[uint16]int{
	// top row
	2: 1, 3: 2, 4: 3, 5: 4, 6: 5, 7: 6, 8: 7, 9: 8, 10: 9,
	// keypad
	79: 1, 80: 2, 81: 3, 75: 4, 76: 5, 77: 6, 71: 7, 72: 8, 73: 9,
}

// ignoredKeys never decide the selection on their own
var ignoredKeys = map[uint16]bool{
	KeyLeftControl: true, KeyRightControl: true,
	KeyLeftShift: true, KeyRightShift: true,
	KeyLeftAlt: true, KeyRightAlt: true,
	KeyLeftSuper: true, KeyRightSuper: true,
	KeyCapsLock: true, KeyNumLock: true,
}

// digitForKey returns the count selected by an evdev key code
func digitForKey(code uint16) (int, bool) {
	n, ok := digitKeys[code]
	return n, ok
}
