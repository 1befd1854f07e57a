package authflow

import "strings"

// Digits is the fixed number of code slots.
const Digits = 6

// Entry models the six-box code input: a fixed array of optional single
// digits plus the index of the focused box. Keeping per-slot state explicit
// is what makes the focus/backspace semantics testable.
type Entry struct {
	slots [Digits]string
	focus int
}

// Reset clears all slots and focuses the first one.
func (e *Entry) Reset() {
	e.slots = [Digits]string{}
	e.focus = 0
}

// SetDigit places a single decimal digit into slot i. Non-digit input is
// rejected. On acceptance, focus advances to the next empty slot after i, or
// stays on the last slot when everything is filled.
func (e *Entry) SetDigit(i int, ch rune) bool {
	if i < 0 || i >= Digits || ch < '0' || ch > '9' {
		return false
	}
	e.slots[i] = string(ch)

	for j := i + 1; j < Digits; j++ {
		if e.slots[j] == "" {
			e.focus = j
			return true
		}
	}
	e.focus = Digits - 1
	return true
}

// Backspace clears slot i if it holds a digit, keeping focus there. On an
// empty slot it only moves focus back one box; it never deletes across
// slots.
func (e *Entry) Backspace(i int) {
	if i < 0 || i >= Digits {
		return
	}
	if e.slots[i] != "" {
		e.slots[i] = ""
		e.focus = i
		return
	}
	if i > 0 {
		e.focus = i - 1
	}
}

// Paste extracts the decimal digits from s, truncates to six, and fills the
// slots from the start. A full six-digit paste focuses the last slot;
// shorter pastes fill what they can and focus the next empty slot without
// completing the code. Input with no digits is ignored.
func (e *Entry) Paste(s string) {
	var digits []rune
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			digits = append(digits, ch)
			if len(digits) == Digits {
				break
			}
		}
	}
	if len(digits) == 0 {
		return
	}

	e.slots = [Digits]string{}
	for i, ch := range digits {
		e.slots[i] = string(ch)
	}
	if len(digits) == Digits {
		e.focus = Digits - 1
	} else {
		e.focus = len(digits)
	}
}

// Complete reports whether all six slots hold digits.
func (e *Entry) Complete() bool {
	for _, s := range e.slots {
		if s == "" {
			return false
		}
	}
	return true
}

// Code returns the concatenated digits.
func (e *Entry) Code() string {
	return strings.Join(e.slots[:], "")
}

// Focus returns the index of the focused slot.
func (e *Entry) Focus() int {
	return e.focus
}

// Slots returns a copy of the slot values for rendering.
func (e *Entry) Slots() [Digits]string {
	return e.slots
}
