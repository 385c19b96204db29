// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

// LastPageWindow is how close to the end the current page must be before the
// last-page shortcut is offered. Jumping further would request offsets deep
// into the index's result set.
const LastPageWindow = 10

// TotalPages returns ceil(total/pageSize), or 0 when either is non-positive.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Offset returns the zero-based index of the first result on page.
func Offset(page, pageSize int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * pageSize
}

// LastPageEnabled reports whether the last-page shortcut is usable from
// current.
func LastPageEnabled(totalPages, current int) bool {
	return totalPages-current <= LastPageWindow
}

// PageControl is one element of the page strip.
type PageControl struct {
	// Page is the target page, or 0 for an ellipsis.
	Page     int
	Current  bool
	Enabled  bool
	Ellipsis bool
}

// Controls lays out the page strip for current of totalPages: the first
// page, a window of one page either side of current, and the last page,
// with ellipses marking gaps. The last page is disabled unless
// LastPageEnabled. Fewer than two pages yields nil.
func Controls(current, totalPages int) []PageControl {
	if totalPages <= 1 {
		return nil
	}
	const window = 1

	page := func(n int) PageControl {
		return PageControl{Page: n, Current: n == current, Enabled: true}
	}

	out := []PageControl{page(1)}
	if current > window+2 {
		out = append(out, PageControl{Ellipsis: true})
	}
	for i := max(2, current-window); i <= min(totalPages-1, current+window); i++ {
		out = append(out, page(i))
	}
	if current < totalPages-window-1 {
		out = append(out, PageControl{Ellipsis: true})
	}

	last := page(totalPages)
	last.Enabled = LastPageEnabled(totalPages, current)
	return append(out, last)
}
