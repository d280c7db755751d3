package domain

import "time"

// Message is a single incoming chat event, immutable once constructed.
type Message struct {
	ID        string
	Room      string
	UserID    int64
	UserName  string
	Text      string
	Timestamp time.Time
}

// Command is a message recognized as a bot instruction: the first token
// after the trigger is the command name, the remaining tokens its parameters.
type Command struct {
	Name    string
	Params  []string
	Message *Message
}

func (c *Command) HasParams() bool {
	return len(c.Params) > 0
}

// Param returns the parameter at index i, or an empty string if there is none.
func (c *Command) Param(i int) string {
	if i < 0 || i >= len(c.Params) {
		return ""
	}

	return c.Params[i]
}

// Item is one entry of an external ranked feed watched by a monitor.
type Item struct {
	ID    int
	Title string
	URL   string
}
