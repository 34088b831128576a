package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextWindow(t *testing.T) {
	t.Run("bounded fifo", func(t *testing.T) {
		w := NewContextWindow(3)
		w.Add("a")
		w.Add("b")
		w.Add("c")
		w.Add("d")

		assert.Equal(t, 3, w.Len())
		assert.Equal(t, []string{"b", "c", "d"}, w.Snapshot())
	})

	t.Run("insertion order", func(t *testing.T) {
		w := NewContextWindow(5)
		w.Add("first")
		w.Add("second")
		assert.Equal(t, []string{"first", "second"}, w.Snapshot())
	})

	t.Run("size zero disables", func(t *testing.T) {
		w := NewContextWindow(0)
		assert.False(t, w.Enabled())

		w.Add("a")
		assert.Equal(t, 0, w.Len())
		assert.Nil(t, w.Snapshot())
	})

	t.Run("negative size disables", func(t *testing.T) {
		w := NewContextWindow(-1)
		assert.False(t, w.Enabled())
	})

	t.Run("nil window is disabled", func(t *testing.T) {
		var w *ContextWindow
		assert.False(t, w.Enabled())
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		w := NewContextWindow(3)
		w.Add("a")

		snap := w.Snapshot()
		snap[0] = "mutated"
		assert.Equal(t, []string{"a"}, w.Snapshot())
	})
}
