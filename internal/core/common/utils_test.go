package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedUnique(t *testing.T) {
	got := SortedUnique([]string{"B", "A", "B"}, []string{"", "C", "A"})
	assert.Equal(t, []string{"A", "B", "C"}, got)
	assert.NotNil(t, SortedUnique())
	assert.Empty(t, SortedUnique())
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"e00", "e01", "e10"}, SortedKeys(map[string]int{"e10": 1, "e00": 2, "e01": 3}))
}
