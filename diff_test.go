package i18nbackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatten(t *testing.T) {
	res := Resource{
		"greeting": "Hello",
		"nav": map[string]any{
			"home":  "Home",
			"items": map[string]any{"count": 3.0},
		},
		"empty": nil,
	}

	assert.Equal(t, map[string]string{
		"greeting":        "Hello",
		"nav.home":        "Home",
		"nav.items.count": "3",
		"empty":           "",
	}, Flatten(res))
}

func TestDiffResources(t *testing.T) {
	oldRes := Resource{
		"a": "A",
		"b": "B",
		"n": map[string]any{"x": "X", "y": "Y"},
	}
	newRes := Resource{
		"a": "A",
		"b": "B2",
		"n": map[string]any{"x": "X", "z": "Z"},
		"c": "C",
	}

	d := DiffResources(oldRes, newRes)

	assert.Equal(t, []string{"c", "n.z"}, d.Added)
	assert.Equal(t, []string{"n.y"}, d.Removed)
	assert.Equal(t, []string{"a", "n.x"}, d.Unchanged)
	assert.Equal(t, []ModifiedKey{{Key: "b", Old: "B", New: "B2"}}, d.Modified)
	assert.True(t, d.HasChanges())
	assert.Equal(t, DiffStats{Added: 2, Removed: 1, Unchanged: 2, Modified: 1}, d.Stats())
}

func TestDiffResources_NoChanges(t *testing.T) {
	res := Resource{"a": "A"}
	d := DiffResources(res, res)
	assert.False(t, d.HasChanges())
	assert.Equal(t, []string{"a"}, d.Unchanged)
}

func TestMissingKeys(t *testing.T) {
	source := Resource{"a": "A", "n": map[string]any{"x": "X"}, "b": "B"}
	target := Resource{"a": "Á"}

	assert.Equal(t, map[string]string{"n.x": "X", "b": "B"}, MissingKeys(source, target))
}
