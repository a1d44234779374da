package state

// list is the cursor and search state shared by the list models.
type list struct {
	cursor int
	query  string
}

func (l *list) clamp(n int) {
	if l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

// next moves the cursor to the first match after it. It reports whether the
// cursor moved.
func (l *list) next(n int, match func(int) bool) bool {
	if l.query == "" {
		return false
	}
	for i := l.cursor + 1; i < n; i++ {
		if match(i) {
			l.cursor = i
			return true
		}
	}
	return false
}

// prev moves the cursor to the last match before it.
func (l *list) prev(match func(int) bool) bool {
	if l.query == "" {
		return false
	}
	for i := l.cursor - 1; i >= 0; i-- {
		if match(i) {
			l.cursor = i
			return true
		}
	}
	return false
}
