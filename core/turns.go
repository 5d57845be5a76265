package core

// Turn groups a user prompt with all messages produced in answer to it,
// representing one request-response cycle in the conversation.
type Turn struct {
	UserMessage *Message  // nil if the turn starts with assistant output
	Responses   []Message // assistant, tool_use, and tool_result messages
}

// GroupTurns splits a flat message stream into turns. A new turn starts at
// each user_input or command message. Tool results and interruptions are
// part of the agentic loop and fold into the current turn; meta and compact
// messages never open a turn.
func GroupTurns(messages []Message) []Turn {
	var turns []Turn
	var current *Turn

	for i := range messages {
		msg := &messages[i]
		switch msg.Type {
		case TypeUserInput, TypeCommand:
			if current != nil {
				turns = append(turns, *current)
			}
			current = &Turn{UserMessage: msg}
		default:
			if current == nil {
				current = &Turn{}
			}
			current.Responses = append(current.Responses, *msg)
		}
	}
	if current != nil {
		turns = append(turns, *current)
	}
	return turns
}

// StepCount returns the number of tool_use messages in this turn.
func (t Turn) StepCount() int {
	n := 0
	for _, m := range t.Responses {
		if m.Type == TypeToolUse {
			n++
		}
	}
	return n
}
