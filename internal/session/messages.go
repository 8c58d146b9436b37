package session

// User facing texts
const (
	greetingNew       = "Hi!"
	greetingAgain     = "Hi, nice to see you again."
	emptyReviewText   = "you don't have any vocabulary yet!"
	reviewPromptText  = "🐰 OK! Let's start to review.\nPlease select the play mode."
	reviewEndText     = "end🕴"
	emptyTestText     = "there is no vocabulary to test yet!"
	wordGoneText      = "oops! this word is gone"
	invalidInputText  = "🤔 please send me a single word"
	notFoundText      = ":( I can't find this word"
	lookupFailedText  = ":( 500"

	// UnknownCommandText answers commands and buttons the bot does not know
	UnknownCommandText = "unknown command🕴"

	// FailureText is shown when handling an event failed unexpectedly
	FailureText = "something went wrong🕴 please try again"

	helpText = "Send me an English word and I will look it up for you.\n\n" +
		"/review - review the words you looked up\n" +
		"/test - a random word from the vocabulary\n" +
		"/help - show this help"

	labelSequential = "🔁"
	labelShuffle    = "🔀"
	labelAffirm     = "✅"
	labelSkip       = "⏭"
	labelAsk        = "❓"
	labelNext       = "⏭"

	starMark       = "⭐️"
	completionMark = "🎉"
	maxStars       = 30
)
