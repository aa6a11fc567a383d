package project

import (
	"os"
	"path/filepath"
)

// maxWalkUp bounds the upward search for the root marker.
const maxWalkUp = 10

// FindRoot walks upward from start looking for a directory that contains the
// marker file. It returns the first such directory and true, or the resolved
// start directory and false when no marker is found within maxWalkUp steps.
func FindRoot(start, marker string) (string, bool) {
	resolved, err := filepath.Abs(start)
	if err != nil {
		return start, false
	}

	current := resolved
	for i := 0; i < maxWalkUp; i++ {
		candidate := filepath.Join(current, marker)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return current, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return resolved, false
}
