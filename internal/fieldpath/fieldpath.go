// Package fieldpath implements the textual addressing scheme shared by
// flattened fields: dotted object keys with optional trailing array
// indices, e.g. "address.city" or "items[2].sku".
package fieldpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fieldlens/fieldlens/internal/errors"
)

// segmentRegex matches one path segment: a name, a name with a trailing
// [index], or a bare [index] slot.
var segmentRegex = regexp.MustCompile(`^([^.\[\]]*)(?:\[([0-9]+)\])?$`)

// Segment is one step of a parsed field path.
type Segment struct {
	// Name is the object key, empty for a bare array slot.
	Name string
	// Index is the array index when HasIndex is true.
	Index int
	// HasIndex reports whether this segment addresses an array element.
	HasIndex bool
}

// String renders the segment back in path syntax.
func (s Segment) String() string {
	if s.HasIndex {
		return fmt.Sprintf("%s[%d]", s.Name, s.Index)
	}
	return s.Name
}

// Join appends an object key to a parent path. Root fields have an empty
// parent and keep the bare key.
func Join(parentPath, key string) string {
	if parentPath == "" {
		return key
	}
	return parentPath + "." + key
}

// JoinIndex appends an array index to a container path.
func JoinIndex(path string, index int) string {
	return fmt.Sprintf("%s[%d]", path, index)
}

// IndexKey renders the synthetic key of an array element, "[i]".
func IndexKey(index int) string {
	return fmt.Sprintf("[%d]", index)
}

// ValidKey reports whether an object key can be embedded in a path without
// colliding with the separator or bracket syntax.
func ValidKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, ".[]")
}

// Parse splits a path into its segments. A path that does not match the
// grammar is rejected with ErrMalformedPath rather than truncated: a
// silently dropped trailing segment would resurface later as silently
// dropped data during reconstruction.
func Parse(path string) ([]Segment, error) {
	if path == "" {
		return nil, errors.NewPathError("path is empty", errors.ErrMalformedPath)
	}
	tokens := strings.Split(path, ".")
	segments := make([]Segment, 0, len(tokens))
	for _, token := range tokens {
		seg, err := parseSegment(token)
		if err != nil {
			return nil, errors.NewPathError(
				fmt.Sprintf("invalid segment %q in path %q", token, path), err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseSegment(token string) (Segment, error) {
	match := segmentRegex.FindStringSubmatch(token)
	if match == nil {
		return Segment{}, errors.ErrMalformedPath
	}
	name, digits := match[1], match[2]
	if digits == "" {
		if name == "" {
			return Segment{}, errors.ErrMalformedPath
		}
		return Segment{Name: name}, nil
	}
	index, err := strconv.Atoi(digits)
	if err != nil {
		return Segment{}, errors.ErrMalformedPath
	}
	return Segment{Name: name, Index: index, HasIndex: true}, nil
}
