package curriculum

// Question types accepted in a subject document.
const (
	QuestionSingleChoice   = "single_choice"
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionShortAnswer    = "short_answer"
	QuestionEssay          = "essay"
)

// SubjectDocument is the declarative description of an entire subject tree.
type SubjectDocument struct {
	Name        string            `json:"name" yaml:"name"`
	Slug        string            `json:"slug" yaml:"slug"`
	Description string            `json:"description" yaml:"description"`
	Icon        string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	Chapters    []ChapterDocument `json:"chapters" yaml:"chapters"`
}

// ChapterDocument is a chapter within a subject.
type ChapterDocument struct {
	Name        string            `json:"name" yaml:"name"`
	Slug        string            `json:"slug" yaml:"slug"`
	Description string            `json:"description" yaml:"description"`
	Sections    []SectionDocument `json:"sections" yaml:"sections"`
}

// SectionDocument is a section within a chapter. It holds lessons and at most one test.
type SectionDocument struct {
	Name        string           `json:"name" yaml:"name"`
	Slug        string           `json:"slug" yaml:"slug"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Lessons     []LessonDocument `json:"lessons" yaml:"lessons"`
	Test        *TestDocument    `json:"test,omitempty" yaml:"test,omitempty"`
}

// LessonDocument is a single lesson.
type LessonDocument struct {
	Title            string `json:"title" yaml:"title"`
	Slug             string `json:"slug" yaml:"slug"`
	Content          string `json:"content" yaml:"content"`
	ContentType      string `json:"contentType" yaml:"contentType"`
	EstimatedMinutes int    `json:"estimatedMinutes" yaml:"estimatedMinutes"`
}

// TestDocument is the test attached to a section.
type TestDocument struct {
	Title              string             `json:"title" yaml:"title"`
	Slug               string             `json:"slug" yaml:"slug"`
	Description        string             `json:"description" yaml:"description"`
	TimeLimit          *int               `json:"timeLimit,omitempty" yaml:"timeLimit,omitempty"` // minutes
	PassingScore       int                `json:"passingScore" yaml:"passingScore"`
	MaxAttempts        *int               `json:"maxAttempts,omitempty" yaml:"maxAttempts,omitempty"`
	ShuffleQuestions   bool               `json:"shuffleQuestions" yaml:"shuffleQuestions"`
	ShowCorrectAnswers bool               `json:"showCorrectAnswers" yaml:"showCorrectAnswers"`
	Questions          []QuestionDocument `json:"questions" yaml:"questions"`
}

// QuestionDocument is a question inside a test. LessonSlug may point at any
// lesson of the same subject.
type QuestionDocument struct {
	Text               string           `json:"text" yaml:"text"`
	Type               string           `json:"type" yaml:"type"`
	Explanation        string           `json:"explanation" yaml:"explanation"`
	Difficulty         string           `json:"difficulty" yaml:"difficulty"`
	Points             int              `json:"points" yaml:"points"`
	AllowPartialCredit bool             `json:"allowPartialCredit,omitempty" yaml:"allowPartialCredit,omitempty"`
	LessonSlug         string           `json:"lessonSlug,omitempty" yaml:"lessonSlug,omitempty"`
	Options            []OptionDocument `json:"options,omitempty" yaml:"options,omitempty"`
}

// OptionDocument is one answer option of a choice question.
type OptionDocument struct {
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
	Order     int    `json:"order" yaml:"order"`
}

// CorrectOptions returns how many options are flagged correct.
func (q QuestionDocument) CorrectOptions() int {
	n := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			n++
		}
	}
	return n
}
