package curriculum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a subject document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the document format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// FormatFromContentType picks the document format from an HTTP Content-Type.
// Anything that is not YAML is treated as JSON.
func FormatFromContentType(ct string) Format {
	ct = strings.ToLower(ct)
	if strings.Contains(ct, "yaml") {
		return FormatYAML
	}
	return FormatJSON
}

// Parse decodes and validates a raw document. Text is brought into Unicode
// NFC form before any check, so the bounds hold for what is stored. Validation
// is exhaustive: the returned *ValidationError lists every schema and rule
// violation at once.
func Parse(data []byte, format Format) (*SubjectDocument, error) {
	raw, err := toJSON(data, format)
	if err == nil {
		raw, err = normalizeJSON(raw)
	}
	if err != nil {
		return nil, &ValidationError{Violations: []Violation{{Path: rootPath, Message: err.Error()}}}
	}

	violations, err := schemaViolations(raw)
	if err != nil {
		return nil, err
	}

	var doc SubjectDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Type mismatches are already reported by the schema.
		if len(violations) == 0 {
			violations = append(violations, Violation{Path: rootPath, Message: err.Error()})
		}
		return nil, &ValidationError{Violations: violations}
	}

	violations = append(violations, ruleViolations(&doc)...)
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return &doc, nil
}

func toJSON(data []byte, format Format) ([]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("document is empty")
	}
	switch format {
	case FormatJSON, "":
		if !json.Valid(data) {
			return nil, fmt.Errorf("document is not valid JSON")
		}
		return data, nil
	case FormatYAML:
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		keepTimestampsAsText(&root)
		var v any
		if err := root.Decode(&v); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		out, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("convert yaml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// keepTimestampsAsText retags date-like plain scalars as strings so that
// "name: 2024-01-01" keeps its source text instead of becoming a time.Time.
func keepTimestampsAsText(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
	}
	for _, c := range n.Content {
		keepTimestampsAsText(c)
	}
}

// normalizeJSON rewrites every string value of a JSON document into NFC form.
// Object keys are left alone so unknown properties are still reported as written.
func normalizeJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("document is not valid JSON: %w", err)
	}
	return json.Marshal(nfcValue(v))
}

func nfcValue(v any) any {
	switch t := v.(type) {
	case string:
		return norm.NFC.String(t)
	case map[string]any:
		for k, e := range t {
			t[k] = nfcValue(e)
		}
	case []any:
		for i, e := range t {
			t[i] = nfcValue(e)
		}
	}
	return v
}
