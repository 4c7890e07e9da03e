package template

const (
	QuestionTypeRating         = "rating"
	QuestionTypeText           = "text"
	QuestionTypeMultipleChoice = "multiple-choice"
)

func ValidQuestionType(questionType string) bool {
	switch questionType {
	case QuestionTypeRating, QuestionTypeText, QuestionTypeMultipleChoice:
		return true
	}
	return false
}
