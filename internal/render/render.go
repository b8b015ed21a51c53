// Package render turns flatten and unflatten results into presentable text.
// It is the in-repo consumer of the field list; interactive editing
// surfaces sit outside this module and receive the same records.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fieldlens/fieldlens/internal/config"
	"github.com/fieldlens/fieldlens/internal/errors"
	"github.com/fieldlens/fieldlens/internal/models"
)

// valuePreviewLimit caps the VALUE column in table output.
const valuePreviewLimit = 60

// Renderer formats field lists and documents according to configuration
type Renderer struct {
	cfg *config.Config
}

// NewRenderer creates a new Renderer instance
func NewRenderer(cfg *config.Config) *Renderer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Renderer{cfg: cfg}
}

// RenderFields renders a flattened field list in the configured format.
func (r *Renderer) RenderFields(fields []models.FlattenedField) (string, error) {
	switch r.cfg.Output.Format {
	case config.FormatJSON:
		return r.renderFieldsJSON(fields)
	case config.FormatTable:
		return r.renderFieldsTable(fields)
	default:
		return "", errors.NewRenderError(
			fmt.Sprintf("unsupported output format %q", r.cfg.Output.Format), nil)
	}
}

// RenderDocument renders a reconstructed document as indented JSON with its
// key order intact.
func (r *Renderer) RenderDocument(doc *models.Object) (string, error) {
	data, err := json.MarshalIndent(doc, "", strings.Repeat(" ", r.cfg.Output.Indent))
	if err != nil {
		return "", errors.NewRenderError("failed to encode document", err)
	}
	return string(data), nil
}

func (r *Renderer) renderFieldsJSON(fields []models.FlattenedField) (string, error) {
	data, err := json.MarshalIndent(fields, "", strings.Repeat(" ", r.cfg.Output.Indent))
	if err != nil {
		return "", errors.NewRenderError("failed to encode field list", err)
	}
	return string(data), nil
}

func (r *Renderer) renderFieldsTable(fields []models.FlattenedField) (string, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	if r.cfg.Output.Labels {
		fmt.Fprintln(w, "LABEL\tPATH\tTYPE\tDEPTH\tVALUE")
	} else {
		fmt.Fprintln(w, "PATH\tTYPE\tDEPTH\tVALUE")
	}

	for _, field := range fields {
		preview, err := valuePreview(field)
		if err != nil {
			return "", err
		}
		if r.cfg.Output.Labels {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				r.cfg.LabelFor(field.Key), field.Path, field.Type, field.Depth, preview)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				field.Path, field.Type, field.Depth, preview)
		}
	}

	if err := w.Flush(); err != nil {
		return "", errors.NewRenderError("failed to format table", err)
	}
	return buf.String(), nil
}

// valuePreview renders a compact single-line form of a field value.
// Containers summarize to their size; their contents already have rows of
// their own.
func valuePreview(field models.FlattenedField) (string, error) {
	if obj, ok := field.Value.(*models.Object); ok {
		return fmt.Sprintf("{%d fields}", obj.Len()), nil
	}
	if arr, ok := field.Value.(models.Array); ok {
		return fmt.Sprintf("[%d items]", len(arr)), nil
	}

	data, err := json.Marshal(field.Value)
	if err != nil {
		return "", errors.NewRenderError(
			fmt.Sprintf("failed to encode value at %q", field.Path), err)
	}
	preview := string(data)
	if len(preview) > valuePreviewLimit {
		preview = preview[:valuePreviewLimit] + "..."
	}
	return preview, nil
}
