package curriculum

// documentSchema describes the shape and field bounds of a SubjectDocument.
// Option cardinality per question type is checked in Go (see checkQuestion)
// so that every violation carries a document path.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "slug": {"type": "string", "minLength": 1, "maxLength": 120, "pattern": "^[a-z0-9]+([-_][a-z0-9]+)*$"},
    "name": {"type": "string", "minLength": 1, "maxLength": 200},
    "description": {"type": "string", "minLength": 1, "maxLength": 2000},
    "option": {
      "type": "object",
      "additionalProperties": false,
      "required": ["text", "isCorrect", "order"],
      "properties": {
        "text": {"type": "string", "minLength": 1, "maxLength": 1000},
        "isCorrect": {"type": "boolean"},
        "order": {"type": "integer", "minimum": 1}
      }
    },
    "question": {
      "type": "object",
      "additionalProperties": false,
      "required": ["text", "type", "explanation", "difficulty", "points"],
      "properties": {
        "text": {"type": "string", "minLength": 1, "maxLength": 2000},
        "type": {"enum": ["single_choice", "multiple_choice", "true_false", "short_answer", "essay"]},
        "explanation": {"type": "string", "minLength": 1, "maxLength": 4000},
        "difficulty": {"enum": ["easy", "medium", "hard"]},
        "points": {"type": "integer", "minimum": 1, "maximum": 100},
        "allowPartialCredit": {"type": "boolean"},
        "lessonSlug": {"$ref": "#/definitions/slug"},
        "options": {"type": "array", "items": {"$ref": "#/definitions/option"}}
      }
    },
    "test": {
      "type": "object",
      "additionalProperties": false,
      "required": ["title", "slug", "description", "passingScore", "shuffleQuestions", "showCorrectAnswers", "questions"],
      "properties": {
        "title": {"$ref": "#/definitions/name"},
        "slug": {"$ref": "#/definitions/slug"},
        "description": {"$ref": "#/definitions/description"},
        "timeLimit": {"type": "integer", "minimum": 1, "maximum": 600},
        "passingScore": {"type": "integer", "minimum": 0, "maximum": 100},
        "maxAttempts": {"type": "integer", "minimum": 1, "maximum": 100},
        "shuffleQuestions": {"type": "boolean"},
        "showCorrectAnswers": {"type": "boolean"},
        "questions": {"type": ["array", "null"], "items": {"$ref": "#/definitions/question"}}
      }
    },
    "lesson": {
      "type": "object",
      "additionalProperties": false,
      "required": ["title", "slug", "content", "contentType", "estimatedMinutes"],
      "properties": {
        "title": {"$ref": "#/definitions/name"},
        "slug": {"$ref": "#/definitions/slug"},
        "content": {"type": "string", "minLength": 1},
        "contentType": {"enum": ["text", "markdown", "html", "video"]},
        "estimatedMinutes": {"type": "integer", "minimum": 1, "maximum": 600}
      }
    },
    "section": {
      "type": "object",
      "additionalProperties": false,
      "required": ["name", "slug", "lessons"],
      "properties": {
        "name": {"$ref": "#/definitions/name"},
        "slug": {"$ref": "#/definitions/slug"},
        "description": {"type": "string", "maxLength": 2000},
        "lessons": {"type": ["array", "null"], "items": {"$ref": "#/definitions/lesson"}},
        "test": {"$ref": "#/definitions/test"}
      }
    },
    "chapter": {
      "type": "object",
      "additionalProperties": false,
      "required": ["name", "slug", "description", "sections"],
      "properties": {
        "name": {"$ref": "#/definitions/name"},
        "slug": {"$ref": "#/definitions/slug"},
        "description": {"$ref": "#/definitions/description"},
        "sections": {"type": ["array", "null"], "items": {"$ref": "#/definitions/section"}}
      }
    }
  },
  "type": "object",
  "additionalProperties": false,
  "required": ["name", "slug", "description", "chapters"],
  "properties": {
    "name": {"$ref": "#/definitions/name"},
    "slug": {"$ref": "#/definitions/slug"},
    "description": {"$ref": "#/definitions/description"},
    "icon": {"type": "string", "maxLength": 100},
    "chapters": {"type": ["array", "null"], "items": {"$ref": "#/definitions/chapter"}}
  }
}`
