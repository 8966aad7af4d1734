// File: internal/browser/command.go
package browser

// Action identifies a single automation command type understood by the remote
// browser service.
type Action string

const (
	ActionNavigate        Action = "navigate"
	ActionType            Action = "type"
	ActionClick           Action = "click"
	ActionSelectOption    Action = "selectOption"
	ActionWaitForSelector Action = "waitForSelector"
)

// Command is one tagged automation action. Exactly the fields relevant to the
// action are populated; the rest are omitted from the wire payload.
type Command struct {
	Action    Action `json:"action"`
	URL       string `json:"url,omitempty"`
	Selector  string `json:"selector,omitempty"`
	Text      string `json:"text,omitempty"`
	Value     string `json:"value,omitempty"`
	TimeoutMs int    `json:"timeoutMs,omitempty"`
}

// Result is the structured response to a single command. Found is only
// meaningful for wait commands: a wait that times out is a successful round
// trip with Found=false, not an error.
type Result struct {
	Status string `json:"status"`
	Found  bool   `json:"found"`
}

// Navigate builds a navigation command.
func Navigate(url string) Command {
	return Command{Action: ActionNavigate, URL: url}
}

// TypeText builds a typing command against a selector.
func TypeText(selector, text string) Command {
	return Command{Action: ActionType, Selector: selector, Text: text}
}

// Click builds a click command.
func Click(selector string) Command {
	return Command{Action: ActionClick, Selector: selector}
}

// SelectOption builds an option-select command.
func SelectOption(selector, value string) Command {
	return Command{Action: ActionSelectOption, Selector: selector, Value: value}
}

// WaitFor builds a bounded wait-for-selector command.
func WaitFor(selector string, timeoutMs int) Command {
	return Command{Action: ActionWaitForSelector, Selector: selector, TimeoutMs: timeoutMs}
}
