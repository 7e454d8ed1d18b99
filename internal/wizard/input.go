package wizard

// TextInput is an immutable single-line edit buffer. The cursor counts runes,
// so multi-byte characters move it by one position.
type TextInput struct {
	runes  []rune
	cursor int
}

// NewTextInput returns a buffer holding s with the cursor at the end.
func NewTextInput(s string) TextInput {
	r := []rune(s)
	return TextInput{runes: r, cursor: len(r)}
}

// Text returns the buffer contents.
func (t TextInput) Text() string {
	return string(t.runes)
}

// Cursor returns the cursor position in runes, within [0, Len()].
func (t TextInput) Cursor() int {
	return t.cursor
}

// Len returns the number of runes in the buffer.
func (t TextInput) Len() int {
	return len(t.runes)
}

// Insert adds r before the cursor and moves the cursor past it.
func (t TextInput) Insert(r rune) TextInput {
	out := make([]rune, 0, len(t.runes)+1)
	out = append(out, t.runes[:t.cursor]...)
	out = append(out, r)
	out = append(out, t.runes[t.cursor:]...)
	return TextInput{runes: out, cursor: t.cursor + 1}
}

// Backspace deletes the rune before the cursor. It is a no-op at position 0.
func (t TextInput) Backspace() TextInput {
	if t.cursor == 0 {
		return t
	}
	out := make([]rune, 0, len(t.runes)-1)
	out = append(out, t.runes[:t.cursor-1]...)
	out = append(out, t.runes[t.cursor:]...)
	return TextInput{runes: out, cursor: t.cursor - 1}
}

// Left moves the cursor one rune left, stopping at the start.
func (t TextInput) Left() TextInput {
	if t.cursor > 0 {
		t.cursor--
	}
	return t
}

// Right moves the cursor one rune right, stopping at the end.
func (t TextInput) Right() TextInput {
	if t.cursor < len(t.runes) {
		t.cursor++
	}
	return t
}

// Home moves the cursor to the start.
func (t TextInput) Home() TextInput {
	t.cursor = 0
	return t
}

// End moves the cursor past the last rune.
func (t TextInput) End() TextInput {
	t.cursor = len(t.runes)
	return t
}
