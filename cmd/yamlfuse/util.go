package main

import "os"

// readSourceQuiet reads a file for diagnostic excerpting. It returns
// the read error to the caller, which skips the excerpt for that frame
// rather than failing: a missing source only loses the excerpt.
func readSourceQuiet(path string) ([]byte, error) {
	return os.ReadFile(path)
}
