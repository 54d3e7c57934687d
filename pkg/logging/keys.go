package logging

const (
	// KeyAppName is the logging key for the application name.
	KeyAppName = "app"

	// KeyError is the logging key for errors.
	KeyError = "err"

	// KeyDal is the logging key for the data access layer in use.
	KeyDal = "dal"

	// KeyAppeal is the logging key for an appeal ID.
	KeyAppeal = "appeal"

	// KeyUser is the logging key for a user ID.
	KeyUser = "user"

	// KeyChannel is the logging key for a channel ID.
	KeyChannel = "channel"

	// KeyLog is the logging key for a transcript log key.
	KeyLog = "log_key"
)
