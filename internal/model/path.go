package model

import (
	"slices"
	"strings"
)

// PathSeparator separates segments of a target path such as "/tender/items/id".
const PathSeparator = "/"

// IdentifierField is the member name whose value changes mark a new array element.
const IdentifierField = "id"

// SplitPath splits "/a/b/c" into ["a", "b", "c"].
func SplitPath(path string) []string {
	trimmed := strings.Trim(path, PathSeparator)
	if trimmed == "" {
		return nil
	}

	return strings.Split(trimmed, PathSeparator)
}

// JoinPath is the inverse of SplitPath.
func JoinPath(segments ...string) string {
	return PathSeparator + strings.Join(segments, PathSeparator)
}

// IsBelow reports whether path is strictly inside prefix, on a segment boundary.
func IsBelow(path, prefix string) bool {
	return strings.HasPrefix(path, strings.TrimSuffix(prefix, PathSeparator)+PathSeparator)
}

// Depth returns the number of segments in path.
func Depth(path string) int {
	return len(SplitPath(path))
}

// Section returns the first segment of path ("tender" for "/tender/items/id").
func Section(path string) string {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return ""
	}

	return segments[0]
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
