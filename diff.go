package i18nbackend

import (
	"fmt"
	"sort"
)

// KeySeparator joins nested keys in flattened paths.
const KeySeparator = "."

// DiffResult represents the difference between two versions of a namespace.
type DiffResult struct {
	// Added contains key paths only present in the new version.
	Added []string

	// Removed contains key paths only present in the old version.
	Removed []string

	// Unchanged contains key paths with identical values in both versions.
	Unchanged []string

	// Modified contains key paths whose value changed.
	Modified []ModifiedKey
}

// ModifiedKey is a key path whose value differs between versions.
type ModifiedKey struct {
	Key string
	Old string
	New string
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
	Modified  int `json:"modified"`
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// Flatten turns a nested resource into key paths joined by KeySeparator.
// Non-string leaves are formatted with fmt.
func Flatten(res Resource) map[string]string {
	out := make(map[string]string)
	flatten(out, "", res)
	return out
}

func flatten(out map[string]string, prefix string, node map[string]any) {
	for k, v := range node {
		path := k
		if prefix != "" {
			path = prefix + KeySeparator + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(out, path, val)
		case Resource:
			flatten(out, path, val)
		case string:
			out[path] = val
		case nil:
			out[path] = ""
		default:
			out[path] = fmt.Sprint(val)
		}
	}
}

// DiffResources compares two versions of a namespace key by key.
// Every list in the result is sorted.
func DiffResources(oldRes, newRes Resource) *DiffResult {
	result := &DiffResult{}

	oldFlat := Flatten(oldRes)
	newFlat := Flatten(newRes)

	for key, oldVal := range oldFlat {
		newVal, exists := newFlat[key]
		switch {
		case !exists:
			result.Removed = append(result.Removed, key)
		case newVal == oldVal:
			result.Unchanged = append(result.Unchanged, key)
		default:
			result.Modified = append(result.Modified, ModifiedKey{Key: key, Old: oldVal, New: newVal})
		}
	}

	for key := range newFlat {
		if _, exists := oldFlat[key]; !exists {
			result.Added = append(result.Added, key)
		}
	}

	sort.Strings(result.Added)
	sort.Strings(result.Removed)
	sort.Strings(result.Unchanged)
	sort.Slice(result.Modified, func(i, j int) bool {
		return result.Modified[i].Key < result.Modified[j].Key
	})

	return result
}

// MissingKeys returns the key paths of source that target lacks, mapped to
// the source value.
func MissingKeys(source, target Resource) map[string]string {
	srcFlat := Flatten(source)
	missing := make(map[string]string)
	for _, key := range DiffResources(source, target).Removed {
		missing[key] = srcFlat[key]
	}
	return missing
}
