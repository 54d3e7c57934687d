package entities

import "errors"

// ErrOutOfRange is returned when a question index does not point at an
// existing question.
var ErrOutOfRange = errors.New("question index out of range")

// DefaultQuestions is the question list used when no questions have been
// configured.
var DefaultQuestions = []string{
	"Who banned you?",
	"Why do you think you were banned?",
	"Are you sorry?",
}

// AppealConfig is the singleton configuration for the ban appeal workflow.
type AppealConfig struct {
	// Category is the ID of the category channel that appeal discussion
	// channels are created under. Appeals are not provisioned until this is
	// set.
	Category string `json:"category,omitempty" bson:"category,omitempty"`

	// Questions is the ordered list of questions asked on the appeal form.
	Questions []string `json:"questions" bson:"questions"`
}

// EffectiveQuestions returns the configured questions, or the default list
// when none have been configured.
func (c *AppealConfig) EffectiveQuestions() []string {
	if len(c.Questions) == 0 {
		return DefaultQuestions
	}
	return c.Questions
}

// AddQuestion appends a question to the list.
func (c *AppealConfig) AddQuestion(question string) {
	c.Questions = append(c.Questions, question)
}

// RemoveQuestion removes the question at the given 1-based index. The list is
// left unchanged when the index is out of range.
func (c *AppealConfig) RemoveQuestion(index int) error {
	if index < 1 || index > len(c.Questions) {
		return ErrOutOfRange
	}
	c.Questions = append(c.Questions[:index-1], c.Questions[index:]...)
	return nil
}
