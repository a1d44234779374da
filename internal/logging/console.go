package logging

import (
	"bytes"
	"log/slog"
	"sync"
	"time"
)

// Message is one line kept by a Console.
type Message struct {
	Time    time.Time `json:"time"`
	Content string    `json:"content"`
}

// MaxConsoleMessages bounds a Console; older messages are dropped first.
const MaxConsoleMessages = 1000

// Console keeps log lines in memory so they can be shown to the user later.
// It is an io.Writer; every written line becomes one message.
type Console struct {
	mu       sync.Mutex
	messages []Message
	partial  []byte
	now      func() time.Time
}

func NewConsole() *Console {
	return &Console{now: time.Now}
}

func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.partial = append(c.partial, p...)
	for {
		i := bytes.IndexByte(c.partial, '\n')
		if i < 0 {
			break
		}
		line := string(c.partial[:i])
		c.partial = c.partial[i+1:]
		if line != "" {
			c.messages = append(c.messages, Message{Time: c.now(), Content: line})
		}
		if n := len(c.messages) - MaxConsoleMessages; n > 0 {
			c.messages = append(c.messages[:0:0], c.messages[n:]...)
		}
	}
	return len(p), nil
}

// Messages returns a copy of the kept messages, oldest first.
func (c *Console) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Logger returns a text logger writing into the console.
func (c *Console) Logger(level slog.Leveler) Logger {
	return NewText(c, level)
}
