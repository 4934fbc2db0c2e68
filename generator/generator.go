package generator

import "context"

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one turn of a prompt.
type Message struct {
	Role    string
	Content string
}

// Generator produces text from an ordered message sequence.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}
