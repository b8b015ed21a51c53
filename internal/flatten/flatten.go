// Package flatten converts a nested JSON document into the ordered,
// path-addressable field list consumed by field-by-field editors.
package flatten

import (
	"fmt"

	"github.com/fieldlens/fieldlens/internal/errors"
	"github.com/fieldlens/fieldlens/internal/fieldpath"
	"github.com/fieldlens/fieldlens/internal/models"
)

// maxDepth bounds the recursion. JSON documents this deep are either
// corrupt or cyclic, and neither should be allowed to exhaust the stack.
const maxDepth = 1000

// Flatten produces the pre-order field list of a document. A container
// field always precedes its descendants, object keys keep their insertion
// order, and every path in the result is unique.
//
// Depth advances by one per container crossed, counting the synthetic
// array-index field as a container: an element of an array at depth d sits
// at d+1, and the keys of an object element sit at d+2.
func Flatten(doc *models.Object) ([]models.FlattenedField, error) {
	return flattenObject(doc, "", 0)
}

func flattenObject(obj *models.Object, parentPath string, depth int) ([]models.FlattenedField, error) {
	if depth > maxDepth {
		return nil, errors.NewFlattenError(
			fmt.Sprintf("nesting under %q is deeper than %d levels", parentPath, maxDepth),
			errors.ErrDepthExceeded,
		)
	}

	fields := make([]models.FlattenedField, 0, obj.Len())
	for _, key := range obj.Keys() {
		if !fieldpath.ValidKey(key) {
			return nil, errors.NewFlattenError(
				fmt.Sprintf("key %q under %q cannot be addressed by a field path", key, parentPath),
				errors.ErrMalformedPath,
			)
		}
		value, _ := obj.Get(key)
		currentPath := fieldpath.Join(parentPath, key)

		fieldType, err := models.TypeOf(value)
		if err != nil {
			return nil, errors.NewFlattenError(
				fmt.Sprintf("value at %q cannot be classified", currentPath), err)
		}
		fields = append(fields, models.FlattenedField{
			Path:       currentPath,
			Key:        key,
			Value:      value,
			Type:       fieldType,
			Depth:      depth,
			ParentPath: parentPath,
		})

		switch fieldType {
		case models.TypeObject:
			children, err := flattenObject(value.(*models.Object), currentPath, depth+1)
			if err != nil {
				return nil, err
			}
			fields = append(fields, children...)
		case models.TypeArray:
			items, err := flattenArray(value.(models.Array), currentPath, depth+1)
			if err != nil {
				return nil, err
			}
			fields = append(fields, items...)
		}
	}
	return fields, nil
}

func flattenArray(arr models.Array, containerPath string, depth int) ([]models.FlattenedField, error) {
	if depth > maxDepth {
		return nil, errors.NewFlattenError(
			fmt.Sprintf("nesting under %q is deeper than %d levels", containerPath, maxDepth),
			errors.ErrDepthExceeded,
		)
	}

	fields := make([]models.FlattenedField, 0, len(arr))
	for i, element := range arr {
		arrayPath := fieldpath.JoinIndex(containerPath, i)
		elementType, err := models.TypeOf(element)
		if err != nil {
			return nil, errors.NewFlattenError(
				fmt.Sprintf("value at %q cannot be classified", arrayPath), err)
		}
		// An array element that is itself an array stays an opaque leaf:
		// recursing would need a[0][1] paths, which the path grammar does
		// not address.
		fields = append(fields, models.FlattenedField{
			Path:        arrayPath,
			Key:         fieldpath.IndexKey(i),
			Value:       element,
			Type:        elementType,
			Depth:       depth,
			ParentPath:  containerPath,
			IsArrayItem: true,
			ArrayIndex:  i,
		})

		if elementType == models.TypeObject {
			children, err := flattenObject(element.(*models.Object), arrayPath, depth+1)
			if err != nil {
				return nil, err
			}
			fields = append(fields, children...)
		}
	}
	return fields, nil
}
