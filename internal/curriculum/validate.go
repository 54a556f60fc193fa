package curriculum

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Violation is a single problem found in a document.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports every violation found in a document. No write is
// attempted for a document that fails validation.
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		v := e.Violations[0]
		return fmt.Sprintf("invalid document: %s: %s", v.Path, v.Message)
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Path+": "+v.Message)
	}
	return fmt.Sprintf("invalid document: %d violations: %s", len(e.Violations), strings.Join(parts, "; "))
}

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
})

// Validate checks an already-decoded document against the schema and the
// question rules. It returns a *ValidationError listing all violations.
func Validate(doc *SubjectDocument) error {
	if doc == nil {
		return &ValidationError{Violations: []Violation{{Path: rootPath, Message: "document is empty"}}}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	violations, err := schemaViolations(raw)
	if err != nil {
		return err
	}
	violations = append(violations, ruleViolations(doc)...)
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

const rootPath = "(root)"

func schemaViolations(raw []byte) ([]Violation, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		// Not well-formed JSON at all.
		return []Violation{{Path: rootPath, Message: err.Error()}}, nil
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		path := re.Field()
		if re.Type() == "required" {
			if prop, ok := re.Details()["property"].(string); ok {
				path = joinPath(path, prop)
			}
		}
		violations = append(violations, Violation{Path: path, Message: re.Description()})
	}
	return violations, nil
}

// ruleViolations checks what the schema cannot express: option cardinality
// per question type and slug uniqueness per kind within one document.
func ruleViolations(doc *SubjectDocument) []Violation {
	var out []Violation
	seen := map[string]map[string]string{
		"chapter": {},
		"section": {},
		"lesson":  {},
		"test":    {},
	}
	claim := func(kind, slug, path string) {
		if slug == "" {
			return
		}
		if first, dup := seen[kind][slug]; dup {
			out = append(out, Violation{
				Path:    joinPath(path, "slug"),
				Message: fmt.Sprintf("%s slug %q already used at %s", kind, slug, first),
			})
			return
		}
		seen[kind][slug] = path
	}

	for ci, ch := range doc.Chapters {
		chPath := indexPath("chapters", ci)
		claim("chapter", ch.Slug, chPath)
		for si, sec := range ch.Sections {
			secPath := joinPath(chPath, indexPath("sections", si))
			claim("section", sec.Slug, secPath)
			for li, l := range sec.Lessons {
				claim("lesson", l.Slug, joinPath(secPath, indexPath("lessons", li)))
			}
			if sec.Test == nil {
				continue
			}
			testPath := joinPath(secPath, "test")
			claim("test", sec.Test.Slug, testPath)
			for qi, q := range sec.Test.Questions {
				out = append(out, checkQuestion(q, joinPath(testPath, indexPath("questions", qi)))...)
			}
		}
	}
	return out
}

func checkQuestion(q QuestionDocument, path string) []Violation {
	optsPath := joinPath(path, "options")
	correct := q.CorrectOptions()
	var out []Violation

	switch q.Type {
	case QuestionSingleChoice:
		if correct != 1 {
			out = append(out, Violation{optsPath, fmt.Sprintf("single_choice requires exactly one correct option, got %d", correct)})
		}
	case QuestionTrueFalse:
		if len(q.Options) != 2 {
			out = append(out, Violation{optsPath, fmt.Sprintf("true_false requires exactly 2 options, got %d", len(q.Options))})
		}
		if correct != 1 {
			out = append(out, Violation{optsPath, fmt.Sprintf("true_false requires exactly one correct option, got %d", correct)})
		}
	case QuestionMultipleChoice:
		if correct < 1 {
			out = append(out, Violation{optsPath, "multiple_choice requires at least one correct option"})
		}
	case QuestionShortAnswer, QuestionEssay:
		if len(q.Options) != 0 {
			out = append(out, Violation{optsPath, fmt.Sprintf("%s must not have options, got %d", q.Type, len(q.Options))})
		}
	}
	return out
}

func joinPath(parent, child string) string {
	if parent == "" || parent == rootPath {
		return child
	}
	return parent + "." + child
}

func indexPath(field string, i int) string {
	return field + "." + strconv.Itoa(i)
}
