package parser

import (
	"encoding/json"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/fieldlens/fieldlens/internal/models"
)

func TestParse_SimpleObjectKeepsKeyOrder(t *testing.T) {
	jsonStr := `{"name": "John Doe", "age": 30, "isStudent": false, "city": null}`
	value, err := Parse(strings.NewReader(jsonStr))
	if err != nil {
		t.Fatalf("Parse() error = %v, wantErr nil", err)
	}

	obj, ok := value.(*models.Object)
	if !ok {
		t.Fatalf("Parse() root is not a *models.Object, got %T", value)
	}

	wantKeys := []string{"name", "age", "isStudent", "city"}
	if !reflect.DeepEqual(obj.Keys(), wantKeys) {
		t.Errorf("Parse() keys = %v, want %v", obj.Keys(), wantKeys)
	}

	if v, _ := obj.Get("name"); v != "John Doe" {
		t.Errorf("Parse() name = %v, want John Doe", v)
	}
	if v, _ := obj.Get("age"); v != json.Number("30") {
		t.Errorf("Parse() age = %v (%T), want json.Number(30)", v, v)
	}
	if v, _ := obj.Get("isStudent"); v != false {
		t.Errorf("Parse() isStudent = %v, want false", v)
	}
	if v, _ := obj.Get("city"); v != nil {
		t.Errorf("Parse() city = %v, want nil", v)
	}
}

func TestParse_SimpleArray(t *testing.T) {
	jsonStr := `[1, "test", true, null, 3.14]`
	value, err := Parse(strings.NewReader(jsonStr))
	if err != nil {
		t.Fatalf("Parse() error = %v, wantErr nil", err)
	}

	expected := models.Array{
		json.Number("1"),
		"test",
		true,
		nil,
		json.Number("3.14"),
	}
	arr, ok := value.(models.Array)
	if !ok {
		t.Fatalf("Parse() root is not a models.Array, got %T", value)
	}
	if !reflect.DeepEqual(arr, expected) {
		t.Errorf("Parse() root = %v, want %v", arr, expected)
	}
}

func TestParse_NestedStructures(t *testing.T) {
	jsonStr := `{"user": {"name": "Jane Doe", "id": 123}, "active": true, "tags": ["go", "json"]}`
	value, err := Parse(strings.NewReader(jsonStr))
	if err != nil {
		t.Fatalf("Parse() error = %v, wantErr nil", err)
	}

	obj, ok := value.(*models.Object)
	if !ok {
		t.Fatalf("Parse() root is not a *models.Object, got %T", value)
	}

	userValue, ok := obj.Get("user")
	if !ok {
		t.Fatal("Parse() missing 'user' key")
	}
	user, ok := userValue.(*models.Object)
	if !ok {
		t.Fatalf("Parse() user is not a *models.Object, got %T", userValue)
	}
	if !reflect.DeepEqual(user.Keys(), []string{"name", "id"}) {
		t.Errorf("Parse() user keys = %v, want [name id]", user.Keys())
	}

	tagsValue, _ := obj.Get("tags")
	tags, ok := tagsValue.(models.Array)
	if !ok {
		t.Fatalf("Parse() tags is not a models.Array, got %T", tagsValue)
	}
	if !reflect.DeepEqual(tags, models.Array{"go", "json"}) {
		t.Errorf("Parse() tags = %v, want [go json]", tags)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if err == nil {
		t.Errorf("Parse() with empty reader, err = nil, want error")
	} else if !strings.Contains(err.Error(), "input is empty") {
		t.Errorf("Parse() with empty reader, err = %v, want error containing 'input is empty'", err)
	}
}

func TestParseString_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   "} {
		_, err := ParseString(input)
		if err == nil {
			t.Errorf("ParseString(%q) err = nil, want error", input)
		} else if !strings.Contains(err.Error(), "input string is empty or consists only of whitespace") {
			t.Errorf("ParseString(%q) err = %v, want 'input string is empty or consists only of whitespace'", input, err)
		}
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	jsonStr := `{"name": "John Doe", "age": 30` // Missing closing brace
	_, err := Parse(strings.NewReader(jsonStr))
	if err == nil {
		t.Errorf("Parse() with malformed JSON, err = nil, want error")
	}
}

func TestParse_TrailingData(t *testing.T) {
	jsonStr := `{"a": 1} {"b": 2}`
	_, err := Parse(strings.NewReader(jsonStr))
	if err == nil {
		t.Errorf("Parse() with trailing document, err = nil, want error")
	} else if !strings.Contains(err.Error(), "multiple JSON values") {
		t.Errorf("Parse() with trailing document, err = %v, want error containing 'multiple JSON values'", err)
	}
}

func TestParse_RootPrimitives(t *testing.T) {
	testCases := []struct {
		name        string
		jsonStr     string
		expectedVal interface{}
	}{
		{"RootString", `"hello world"`, "hello world"},
		{"RootNumber", `123.45`, json.Number("123.45")},
		{"RootBooleanTrue", `true`, true},
		{"RootBooleanFalse", `false`, false},
		{"RootNull", `null`, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			value, err := Parse(strings.NewReader(tc.jsonStr))
			if err != nil {
				t.Fatalf("Parse() error = %v, wantErr nil for %s", err, tc.name)
			}
			if !reflect.DeepEqual(value, tc.expectedVal) {
				t.Errorf("Parse() root = %#v (type %T), want %#v", value, value, tc.expectedVal)
			}
		})
	}
}

func TestAsDocument(t *testing.T) {
	value, err := ParseString(`{"a": 1}`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	doc, err := AsDocument(value)
	if err != nil {
		t.Fatalf("AsDocument() error = %v, wantErr nil", err)
	}
	if doc.Len() != 1 {
		t.Errorf("AsDocument() len = %d, want 1", doc.Len())
	}

	_, err = AsDocument("just a string")
	if err == nil {
		t.Errorf("AsDocument() with primitive root, err = nil, want error")
	} else if !strings.Contains(err.Error(), "expected a JSON object at the root") {
		t.Errorf("AsDocument() err = %v, want error containing 'expected a JSON object at the root'", err)
	}
}

func TestParseFile_SimpleObject(t *testing.T) {
	content := `{"product": "Laptop", "price": 1200.50}`
	tmpfile, err := os.CreateTemp("", "test_simple_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name()) // clean up

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	value, err := ParseFile(tmpfile.Name())
	if err != nil {
		t.Fatalf("ParseFile() error = %v, wantErr nil", err)
	}

	obj, ok := value.(*models.Object)
	if !ok {
		t.Fatalf("ParseFile() root is not a *models.Object, got %T", value)
	}
	if !reflect.DeepEqual(obj.Keys(), []string{"product", "price"}) {
		t.Errorf("ParseFile() keys = %v, want [product price]", obj.Keys())
	}
}

func TestParseFile_NonExistentFile(t *testing.T) {
	_, err := ParseFile("nonexistentfile.json")
	if err == nil {
		t.Errorf("ParseFile() with non-existent file, err = nil, want error")
	} else if !strings.Contains(err.Error(), "not found") {
		t.Errorf("ParseFile() with non-existent file, err = %v, want error containing 'not found'", err)
	}
}

func TestParseFile_EmptyPath(t *testing.T) {
	_, err := ParseFile("")
	if err == nil {
		t.Errorf("ParseFile() with empty path, err = nil, want error")
	} else if !strings.Contains(err.Error(), "file path is empty") {
		t.Errorf("ParseFile() with empty path, err = %v, want error containing 'file path is empty'", err)
	}
}

func TestParseFile_EmptyFileContent(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_empty_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name()) // clean up

	// File is created, but nothing is written to it, so it's empty.
	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	_, err = ParseFile(tmpfile.Name())
	if err == nil {
		t.Errorf("ParseFile() with empty file content, err = nil, want error")
	} else if !strings.Contains(err.Error(), "is empty") {
		t.Errorf("ParseFile() with empty file content, err = %v, want error containing 'is empty'", err)
	}
}

func TestParseFields(t *testing.T) {
	input := `[
		{"path": "title", "key": "title", "value": "x", "type": "string", "depth": 0, "isArrayItem": false},
		{"path": "tags", "key": "tags", "value": ["a"], "type": "array", "depth": 0, "isArrayItem": false},
		{"path": "tags[0]", "key": "[0]", "value": "a", "type": "string", "depth": 1, "parentPath": "tags", "isArrayItem": true, "arrayIndex": 0}
	]`

	fields, err := ParseFields(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseFields() error = %v, wantErr nil", err)
	}
	if len(fields) != 3 {
		t.Fatalf("ParseFields() len = %d, want 3", len(fields))
	}

	title := fields[0]
	if title.Path != "title" || title.Key != "title" || title.Type != models.TypeString || title.Depth != 0 {
		t.Errorf("ParseFields() title field = %+v", title)
	}
	if title.Value != "x" {
		t.Errorf("ParseFields() title value = %v, want x", title.Value)
	}

	item := fields[2]
	if !item.IsArrayItem || item.ArrayIndex != 0 || item.ParentPath != "tags" || item.Depth != 1 {
		t.Errorf("ParseFields() array item field = %+v", item)
	}
}

func TestParseFields_InvalidRecords(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"not an array", `{"path": "a"}`},
		{"element not an object", `["a"]`},
		{"missing path", `[{"key": "a", "type": "string", "depth": 0}]`},
		{"unknown type", `[{"path": "a", "key": "a", "value": 1, "type": "date", "depth": 0}]`},
		{"depth not a number", `[{"path": "a", "key": "a", "value": 1, "type": "number", "depth": "zero"}]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFields(strings.NewReader(tc.input))
			if err == nil {
				t.Errorf("ParseFields(%s) err = nil, want error", tc.input)
			}
		})
	}
}
