// Package stacktrace trims raw goroutine stacks down to this module's frames.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame of
// the stack that points into an internal package.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.SplitSeq(string(stack), "\n") {
		line = strings.TrimSpace(line)

		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		frame, _, _ := strings.Cut(line, " ")
		start := strings.Index(frame, marker)
		if start == -1 {
			continue
		}

		paths = append(paths, frame[start+1:])
	}
	return paths
}
