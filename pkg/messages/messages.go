// Package messages contains the user facing message text for the bot.
package messages

const (
	// ErrUserErrorProcessing is sent to the user when a command fails for an
	// unexpected reason.
	ErrUserErrorProcessing = "There was an error processing your request. Please try again later."

	// ErrNoAppealLinked is sent when a resolution command is executed in a
	// channel that has no appeal bound to it.
	ErrNoAppealLinked = "No ban appeal linked to this channel."

	// ErrAppealAlreadyHandled is sent when an appeal has already been resolved.
	ErrAppealAlreadyHandled = "This appeal is already handled."

	// ErrUserNotBanned is sent when an accepted user turns out to not be
	// banned anymore.
	ErrUserNotBanned = "User is not banned."

	// ErrInvalidQuestionIndex is sent when a question removal index is out of
	// range.
	ErrInvalidQuestionIndex = "Invalid question index!"

	// CategorySet is sent when the appeal category has been updated.
	CategorySet = "Successfully set ban appeal threads category!"

	// QuestionsSet is sent when the question list has been replaced.
	QuestionsSet = "Successfully set questions list!"

	// QuestionAdded is sent when a question has been appended to the list.
	QuestionAdded = "Successfully added question!"

	// QuestionRemoved is sent when a question has been removed from the list.
	QuestionRemoved = "Successfully removed question!"

	// AppealAccepted is the close message recorded for accepted appeals.
	AppealAccepted = "Accepted."

	// AppealRejected is the close message recorded for rejected appeals.
	AppealRejected = "Rejected."
)
