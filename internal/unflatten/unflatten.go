// Package unflatten rebuilds a nested JSON document from a flattened field
// list, resolving each field's position through the fieldpath codec.
package unflatten

import (
	"fmt"
	"sort"

	"github.com/fieldlens/fieldlens/internal/errors"
	"github.com/fieldlens/fieldlens/internal/fieldpath"
	"github.com/fieldlens/fieldlens/internal/models"
)

// Unflatten reconstructs a document from a field list. The list may have
// been edited since it was produced: values changed, fields appended,
// fields removed. Fields are processed shallowest first so a child always
// finds its parent container materialized; within one depth the original
// relative order is kept, which is what preserves object key order.
//
// Errors are explicit: a malformed path, a container-kind conflict, or a
// leaf value outside the JSON domain aborts reconstruction rather than
// producing a silently wrong tree.
func Unflatten(fields []models.FlattenedField) (*models.Object, error) {
	ordered := make([]models.FlattenedField, len(fields))
	copy(ordered, fields)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Depth < ordered[j].Depth
	})

	root := models.NewObject()
	for _, field := range ordered {
		segments, err := fieldpath.Parse(field.Path)
		if err != nil {
			return nil, err
		}
		value, err := materialize(field)
		if err != nil {
			return nil, err
		}
		if err := setAtPath(root, segments, value, field.Path); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// materialize picks what gets written for one field. Containers whose
// children travel as separate records start out empty so that removed child
// fields stay removed; everything else is the field's value as-is. An array
// item that is itself an array is the opaque-leaf case: its value is the
// whole inner array and must not be reset.
func materialize(field models.FlattenedField) (models.Value, error) {
	switch field.Type {
	case models.TypeObject:
		return models.NewObject(), nil
	case models.TypeArray:
		if field.IsArrayItem {
			return field.Value, nil
		}
		return models.Array{}, nil
	default:
		if _, err := models.TypeOf(field.Value); err != nil {
			return nil, errors.NewUnflattenError(
				fmt.Sprintf("value at %q cannot be reconstructed", field.Path), err)
		}
		return field.Value, nil
	}
}

// setAtPath walks the remaining segments from obj, creating intermediate
// containers on demand, and assigns v at the final segment.
func setAtPath(obj *models.Object, segments []fieldpath.Segment, v models.Value, fullPath string) error {
	segment := segments[0]
	last := len(segments) == 1

	if !segment.HasIndex {
		if last {
			obj.Set(segment.Name, v)
			return nil
		}
		next, exists := obj.Get(segment.Name)
		if !exists || next == nil {
			child := models.NewObject()
			obj.Set(segment.Name, child)
			return setAtPath(child, segments[1:], v, fullPath)
		}
		child, ok := next.(*models.Object)
		if !ok {
			return conflict(fullPath, segment, next)
		}
		return setAtPath(child, segments[1:], v, fullPath)
	}

	// A bare [i] slot can only be addressed relative to an enclosing array
	// field; hitting one while positioned on an object is a conflict.
	if segment.Name == "" {
		return conflict(fullPath, segment, obj)
	}

	var arr models.Array
	if existing, exists := obj.Get(segment.Name); exists && existing != nil {
		var ok bool
		if arr, ok = existing.(models.Array); !ok {
			return conflict(fullPath, segment, existing)
		}
	}
	// Grow to hold the index; gaps become explicit nulls so that later
	// writes to lower indices keep their alignment.
	for len(arr) <= segment.Index {
		arr = append(arr, nil)
	}

	if last {
		arr[segment.Index] = v
		obj.Set(segment.Name, arr)
		return nil
	}

	element := arr[segment.Index]
	var child *models.Object
	if element == nil {
		child = models.NewObject()
		arr[segment.Index] = child
	} else {
		var ok bool
		if child, ok = element.(*models.Object); !ok {
			return conflict(fullPath, segment, element)
		}
	}
	obj.Set(segment.Name, arr)
	return setAtPath(child, segments[1:], v, fullPath)
}

func conflict(fullPath string, segment fieldpath.Segment, existing models.Value) error {
	return errors.NewUnflattenError(
		fmt.Sprintf("segment %q of path %q conflicts with existing %T", segment, fullPath, existing),
		errors.ErrStructuralConflict,
	)
}
