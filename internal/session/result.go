package session

// Kind tells the transport how to render a Result
type Kind int

const (
	// KindText is a plain message
	KindText Kind = iota
	// KindInteractive is a message with controls
	KindInteractive
	// KindTerminal ends a flow; no controls follow
	KindTerminal
)

// Control is one button. Data is an encoded Token and must be passed back
// unchanged to HandleAction.
type Control struct {
	Label string
	Data  string
}

// Result is what the engine wants shown for one inbound event
type Result struct {
	Kind Kind
	// Notice is a short message shown before Text, e.g. the progress stars
	Notice    string
	Text      string
	AudioPath string
	Controls  [][]Control
}

func textResult(text string) *Result {
	return &Result{Kind: KindText, Text: text}
}

func terminalResult(text string) *Result {
	return &Result{Kind: KindTerminal, Text: text}
}
