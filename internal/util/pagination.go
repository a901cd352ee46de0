package util

// Calculate turns a 1-based page and size into an offset/limit pair,
// clamping size to a sane window.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	from = (page - 1) * size
	return from, size
}
