package domain

import "time"

type CommandContext struct {
	Room        string
	RoomName    string
	Sender      string
	IsGroupChat bool
	Message     string
	// Reference identifies the originating chat message. It is stored on
	// rest and block records so operators can trace who added them.
	Reference string
	Timestamp time.Time
}

func NewCommandContext(room, roomName, sender, message string, isGroupChat bool) *CommandContext {
	return &CommandContext{
		Room:        room,
		RoomName:    roomName,
		Sender:      sender,
		IsGroupChat: isGroupChat,
		Message:     message,
		Timestamp:   time.Now(),
	}
}

// WithReference returns the context with the message reference set.
func (c *CommandContext) WithReference(ref string) *CommandContext {
	c.Reference = ref
	return c
}
