package components

// Window returns the [start, end) slice of a list of n rows that keeps
// selected visible within height rows.
func Window(selected, n, height int) (start, end int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start = selected - height/2
	start = max(0, min(start, n-height))
	return start, start + height
}
