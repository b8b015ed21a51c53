// Package parser decodes JSON input into the ordered value model. It reads
// the token stream directly instead of unmarshaling into maps, because a
// map-based decode would discard object key order and the field list shown
// to an editor must be stable across sessions.
package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors"

	"github.com/fieldlens/fieldlens/internal/errors"
	"github.com/fieldlens/fieldlens/internal/models"
)

// Parse decodes a single JSON value from an io.Reader.
func Parse(reader io.Reader) (models.Value, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // Ensure numbers are read as json.Number

	value, err := decodeValue(decoder)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		var syntaxError *json.SyntaxError
		if stderrors.As(err, &syntaxError) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrInvalidJSON,
			)
		}
		return nil, errors.NewParsingError("failed to decode JSON", err)
	}

	// Anything after the first value means the input is not a single
	// document.
	if _, err := decoder.Token(); !stderrors.Is(err, io.EOF) {
		if err != nil {
			return nil, errors.NewParsingError("invalid trailing data after first JSON value", err)
		}
		return nil, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	}

	return value, nil
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return nil, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}

// AsDocument asserts that a parsed value is an object, which is the only
// shape the flattener accepts at the root.
func AsDocument(v models.Value) (*models.Object, error) {
	doc, ok := v.(*models.Object)
	if !ok {
		return nil, errors.NewInputError(
			fmt.Sprintf("expected a JSON object at the root, got %T", v),
			errors.ErrNotAnObject,
		)
	}
	return doc, nil
}

// ParseFields decodes a flattened field list, the JSON array produced by
// rendering a flatten result. Field values go through the same ordered
// decoding as documents.
func ParseFields(reader io.Reader) ([]models.FlattenedField, error) {
	value, err := Parse(reader)
	if err != nil {
		return nil, err
	}
	entries, ok := value.(models.Array)
	if !ok {
		return nil, errors.NewParsingError(
			fmt.Sprintf("expected a JSON array of fields, got %T", value),
			errors.ErrInvalidJSON,
		)
	}

	fields := make([]models.FlattenedField, 0, len(entries))
	for i, entry := range entries {
		record, ok := entry.(*models.Object)
		if !ok {
			return nil, errors.NewParsingError(
				fmt.Sprintf("field %d is not a JSON object", i),
				errors.ErrInvalidJSON,
			)
		}
		field, err := fieldFromRecord(record)
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("field %d is invalid", i), err)
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// ParseFieldsString decodes a flattened field list from a string.
func ParseFieldsString(jsonString string) ([]models.FlattenedField, error) {
	if strings.TrimSpace(jsonString) == "" {
		return nil, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return ParseFields(strings.NewReader(jsonString))
}

func fieldFromRecord(record *models.Object) (models.FlattenedField, error) {
	var field models.FlattenedField
	var err error

	if field.Path, err = stringMember(record, "path", true); err != nil {
		return field, err
	}
	if field.Key, err = stringMember(record, "key", true); err != nil {
		return field, err
	}
	if field.ParentPath, err = stringMember(record, "parentPath", false); err != nil {
		return field, err
	}
	field.Value, _ = record.Get("value")

	typeTag, err := stringMember(record, "type", true)
	if err != nil {
		return field, err
	}
	fieldType, ok := models.ParseFieldType(typeTag)
	if !ok {
		return field, fmt.Errorf("unknown field type %q", typeTag)
	}
	field.Type = fieldType

	if field.Depth, err = intMember(record, "depth", true); err != nil {
		return field, err
	}
	if raw, ok := record.Get("isArrayItem"); ok {
		b, ok := raw.(bool)
		if !ok {
			return field, fmt.Errorf("member %q must be a boolean", "isArrayItem")
		}
		field.IsArrayItem = b
	}
	if field.IsArrayItem {
		if field.ArrayIndex, err = intMember(record, "arrayIndex", false); err != nil {
			return field, err
		}
	}
	return field, nil
}

func stringMember(record *models.Object, name string, required bool) (string, error) {
	raw, ok := record.Get(name)
	if !ok {
		if required {
			return "", fmt.Errorf("missing required member %q", name)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("member %q must be a string", name)
	}
	return s, nil
}

func intMember(record *models.Object, name string, required bool) (int, error) {
	raw, ok := record.Get(name)
	if !ok {
		if required {
			return 0, fmt.Errorf("missing required member %q", name)
		}
		return 0, nil
	}
	num, ok := raw.(json.Number)
	if !ok {
		return 0, fmt.Errorf("member %q must be a number", name)
	}
	n, err := num.Int64()
	if err != nil {
		return 0, fmt.Errorf("member %q must be an integer: %w", name, err)
	}
	return int(n), nil
}

// decodeValue reads the next complete JSON value from the token stream.
func decodeValue(decoder *json.Decoder) (models.Value, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	return valueFromToken(decoder, token)
}

func valueFromToken(decoder *json.Decoder, token json.Token) (models.Value, error) {
	switch t := token.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(decoder)
		case '[':
			return decodeArray(decoder)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t.String())
		}
	case string, bool, json.Number:
		return t, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", token)
	}
}

func decodeObject(decoder *json.Decoder) (*models.Object, error) {
	obj := models.NewObject()
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyToken.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", keyToken)
		}
		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}
	// Consume the closing brace.
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(decoder *json.Decoder) (models.Array, error) {
	arr := models.Array{}
	for decoder.More() {
		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
	// Consume the closing bracket.
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}
