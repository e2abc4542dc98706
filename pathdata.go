package deskgraph

import (
	"fmt"
	"strings"

	"github.com/tdewolff/canvas"
)

// pathCommands are the letters that start a path data command.
const pathCommands = "MmZzLlHhVvCcSsQqTtAa"

// ParsePathData parses compact path data: M, L, H, V, C, S, Q, T, A and Z in
// absolute (upper case) and relative (lower case) forms, with implicit command
// repetition. Curves are flattened at tol. On malformed input the sub-paths
// parsed so far are returned together with the error.
func ParsePathData(s string, tol float64) (Outline, error) {
	if strings.TrimSpace(s) == "" {
		return Outline{}, nil
	}
	p, err := canvas.ParseSVG(s)
	if err == nil {
		return outlineFromPath(flattenPath(p, tol)), nil
	}
	err = pathDataError(err)
	if prefix := longestValidPrefix(s); prefix != nil {
		return outlineFromPath(flattenPath(prefix, tol)), err
	}
	return Outline{}, err
}

// pathDataError classifies a canvas parse error: a command short of numbers is
// an arity error, anything else an invalid value.
func pathDataError(err error) error {
	if strings.Contains(err.Error(), "should follow command") {
		return fmt.Errorf("deskgraph: %v: %w", err, ErrInvalidArity)
	}
	return fmt.Errorf("deskgraph: %v: %w", err, ErrInvalidValue)
}

// longestValidPrefix returns the path of the longest run of whole commands at
// the start of s that parses, or nil if none does.
func longestValidPrefix(s string) *canvas.Path {
	for cut := len(s) - 1; cut > 0; cut-- {
		if !strings.ContainsRune(pathCommands, rune(s[cut])) {
			continue
		}
		head := s[:cut]
		if strings.TrimSpace(head) == "" {
			return nil
		}
		if p, err := canvas.ParseSVG(head); err == nil {
			return p
		}
	}
	return nil
}
