package commands

import (
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/csyork/csbot/pkg/identity"
)

// addressPunctuation may follow the bot's nick to address it in a channel,
// as in "csyorkbot: help".
const addressPunctuation = ",:;."

// Responder delivers replies for an Event. The bot implements it.
type Responder interface {
	Reply(ev *Event, text string, quiet bool)
}

// Event is one recognized command. Only the argument cache changes after
// construction.
type Event struct {
	// ID correlates log lines for one invocation.
	ID string
	// User is the full source identity, "nick!user@host".
	User string
	// Channel is the target the message was sent to: a channel, or the
	// bot's own nick for private messages.
	Channel string
	// Command is the invoked name, without any trigger characters.
	Command string
	// Direct is false when the command was triggered by the prefix, true when
	// the bot was addressed by name or messaged privately.
	Direct bool
	// RawData is the rest of the line after the command name.
	RawData string

	responder Responder
	parsed    bool
	args      []string
	argsErr   error
}

// NewEvent builds an Event directly, bypassing recognition.
func NewEvent(r Responder, user, channel, command string, direct bool, rawData string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		User:      user,
		Channel:   channel,
		Command:   command,
		Direct:    direct,
		RawData:   rawData,
		responder: r,
	}
}

// Nick is the short form of User.
func (e *Event) Nick() string {
	return identity.Nick(e.User)
}

// Args splits RawData into arguments on first use and caches the outcome,
// error included. A parse failure also sends an error reply, once.
func (e *Event) Args() ([]string, error) {
	if !e.parsed {
		e.args, e.argsErr = SplitArgs(e.RawData)
		e.parsed = true
		if e.argsErr != nil {
			e.Error("Unmatched quotation marks")
		}
	}
	if e.argsErr != nil {
		return nil, e.argsErr
	}
	return slices.Clone(e.args), nil
}

// Reply answers the command. Private commands are answered to the sender,
// channel commands to the channel.
func (e *Event) Reply(text string) {
	e.reply(text, false)
}

// ReplyQuiet is Reply, but suppressed unless the bot was addressed directly.
// Use it for chatter that should not spam a channel.
func (e *Event) ReplyQuiet(text string) {
	e.reply(text, true)
}

// Error sends "Error: text" as a quiet reply.
func (e *Event) Error(text string) {
	e.reply("Error: "+text, true)
}

func (e *Event) reply(text string, quiet bool) {
	if e.responder == nil {
		return
	}
	e.responder.Reply(e, text, quiet)
}

// Recognizer turns raw messages into Events.
type Recognizer struct {
	// Nick is the bot's current nick.
	Nick string
	// Prefix marks explicit command invocations in channels, e.g. "!".
	Prefix string
	// Responder is attached to every recognized Event.
	Responder Responder
}

// Recognize decides whether msg, sent by user to channel, is a command. In a
// channel it must start with the prefix or with the bot's nick followed by
// one of ",:;."; in private chat everything is a command. It never fails;
// a false result just means "not a command".
func (r Recognizer) Recognize(user, channel, msg string) (*Event, bool) {
	var (
		text    string
		direct  bool
		matched bool
	)

	if identity.IsChannel(channel) {
		switch {
		case r.Prefix != "" && strings.HasPrefix(msg, r.Prefix):
			text = msg[len(r.Prefix):]
			matched = true
		case r.Nick != "" && strings.HasPrefix(msg, r.Nick):
			rest := strings.TrimLeftFunc(msg[len(r.Nick):], unicode.IsSpace)
			// "csyorkbot is great" mentions the bot without addressing it
			if rest != "" && strings.IndexByte(addressPunctuation, rest[0]) >= 0 {
				text = strings.TrimLeft(rest, addressPunctuation)
				direct = true
				matched = true
			}
		}
	} else {
		text = msg
		direct = true
		matched = true
	}

	if !matched {
		return nil, false
	}

	name, rawData, ok := splitCommand(text)
	if !ok {
		return nil, false
	}
	return NewEvent(r.Responder, user, channel, name, direct, rawData), true
}

// splitCommand splits text on its first whitespace run into the command name
// and the remainder.
func splitCommand(text string) (name, rest string, ok bool) {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	if strings.TrimSpace(text) == "" {
		return "", "", false
	}
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return text, "", true
	}
	return text[:i], strings.TrimLeftFunc(text[i:], unicode.IsSpace), true
}
