package entity

import "time"

// Roles de los mensajes de una conversación.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message mensaje de una conversación con el agente.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation historial de mensajes de un usuario con el agente.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Append agrega mensajes y actualiza el título con el primer mensaje del usuario.
func (c *Conversation) Append(now time.Time, msgs ...Message) {
	c.Messages = append(c.Messages, msgs...)
	if c.Title == "" {
		for _, m := range c.Messages {
			if m.Role == RoleUser {
				c.Title = truncate(m.Content, 60)
				break
			}
		}
	}
	c.UpdatedAt = now
}

// Window últimos n mensajes, empezando siempre por un mensaje del usuario.
func (c *Conversation) Window(n int) []Message {
	msgs := c.Messages
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	for len(msgs) > 0 && msgs[0].Role != RoleUser {
		msgs = msgs[1:]
	}
	return append([]Message(nil), msgs...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
