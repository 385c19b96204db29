// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{12345, 10, 1235},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.size), "total=%d size=%d", tt.total, tt.size)
	}
}

func TestLastPageEnabledBoundary(t *testing.T) {
	assert.True(t, LastPageEnabled(20, 10))  // 10 away
	assert.False(t, LastPageEnabled(20, 9))  // 11 away
	assert.True(t, LastPageEnabled(20, 20))  // on it
	assert.False(t, LastPageEnabled(1235, 1))
}

func TestControls(t *testing.T) {
	render := func(cs []PageControl) []int {
		out := make([]int, len(cs))
		for i, c := range cs {
			out[i] = c.Page // 0 marks an ellipsis
		}
		return out
	}

	assert.Nil(t, Controls(1, 1))
	assert.Equal(t, []int{1, 2}, render(Controls(1, 2)))
	assert.Equal(t, []int{1, 2, 0, 50}, render(Controls(1, 50)))
	assert.Equal(t, []int{1, 2, 3, 4, 0, 50}, render(Controls(3, 50)))
	assert.Equal(t, []int{1, 0, 24, 25, 26, 0, 50}, render(Controls(25, 50)))
	assert.Equal(t, []int{1, 0, 48, 49, 50}, render(Controls(49, 50)))

	cs := Controls(25, 50)
	assert.True(t, cs[3].Current)
	assert.False(t, cs[len(cs)-1].Enabled, "last page is 25 away")
	assert.True(t, cs[1].Ellipsis)

	near := Controls(40, 50)
	assert.True(t, near[len(near)-1].Enabled)
}
