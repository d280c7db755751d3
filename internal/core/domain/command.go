package domain

import "strings"

// ParseCommand classifies a message. A message is a command when its text
// starts with the trigger token followed by a non-empty command name; the
// remainder is split on whitespace into parameters. The command name is
// matched case-insensitively.
func ParseCommand(trigger string, message *Message) (*Command, bool) {
	if trigger == "" || !strings.HasPrefix(message.Text, trigger) {
		return nil, false
	}

	fields := strings.Fields(strings.TrimPrefix(message.Text, trigger))
	if len(fields) == 0 {
		return nil, false
	}

	return &Command{
		Name:    strings.ToLower(fields[0]),
		Params:  fields[1:],
		Message: message,
	}, true
}
