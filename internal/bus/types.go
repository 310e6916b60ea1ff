package bus

import (
	"errors"
	"fmt"
	"strings"
)

// Event is implemented by CommandEvent and CallbackEvent only.
type Event interface {
	// Origin returns the channel and user the event came from.
	Origin() Origin
	Validate() error
	isEvent()
}

// Origin identifies where replies for an event should go.
type Origin struct {
	Channel string `json:"channel"`
	ChatID  string `json:"chat_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
}

// CommandEvent is a parsed slash command.
type CommandEvent struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
	ChatID  string `json:"chat_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Args    string `json:"args"`
}

// CallbackEvent is a button press on a message previously sent by a plugin.
// Data is the item part of the payload, after the plugin prefix was stripped.
type CallbackEvent struct {
	PluginID string `json:"plugin_id"`
	Channel  string `json:"channel"`
	ChatID   string `json:"chat_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Data     string `json:"data"`
}

// Button is one interactive option attached to a notification.
type Button struct {
	Label   string `json:"label"`
	Payload string `json:"payload"`
}

// Notification is a user-visible message.
type Notification struct {
	Channel string     `json:"channel"`
	ChatID  string     `json:"chat_id,omitempty"`
	UserID  string     `json:"user_id,omitempty"`
	Title   string     `json:"title"`
	Text    string     `json:"text,omitempty"`
	Buttons [][]Button `json:"buttons,omitempty"`
}

// Dispatch receives events produced by a channel.
type Dispatch func(Event)

var errMissingChannel = errors.New("channel is required")

func (CommandEvent) isEvent()  {}
func (CallbackEvent) isEvent() {}

func (e CommandEvent) Origin() Origin {
	return Origin{Channel: e.Channel, ChatID: e.ChatID, UserID: e.UserID}
}

func (e CallbackEvent) Origin() Origin {
	return Origin{Channel: e.Channel, ChatID: e.ChatID, UserID: e.UserID}
}

// Validate checks the fields every command event must carry. Args may be empty;
// the handler reports that as a usage error.
func (e CommandEvent) Validate() error {
	if strings.TrimSpace(e.Action) == "" {
		return errors.New("command event: action is required")
	}
	if strings.TrimSpace(e.Channel) == "" {
		return fmt.Errorf("command event: %w", errMissingChannel)
	}
	return nil
}

// Validate checks the fields every callback event must carry. Data may be empty;
// the handler reports that as a data error.
func (e CallbackEvent) Validate() error {
	if strings.TrimSpace(e.PluginID) == "" {
		return errors.New("callback event: plugin id is required")
	}
	if strings.TrimSpace(e.Channel) == "" {
		return fmt.Errorf("callback event: %w", errMissingChannel)
	}
	return nil
}

// Reply builds a notification addressed to the origin.
func (o Origin) Reply(title, text string) Notification {
	return Notification{
		Channel: o.Channel,
		ChatID:  o.ChatID,
		UserID:  o.UserID,
		Title:   title,
		Text:    text,
	}
}

// HasButtons reports whether the notification carries any interactive option.
func (n Notification) HasButtons() bool {
	for _, row := range n.Buttons {
		if len(row) > 0 {
			return true
		}
	}
	return false
}

// Body joins title and text the way plain-text channels render them.
func (n Notification) Body() string {
	title := strings.TrimSpace(n.Title)
	text := strings.TrimRight(n.Text, "\n")
	switch {
	case title == "":
		return text
	case text == "":
		return title
	default:
		return title + "\n" + text
	}
}
