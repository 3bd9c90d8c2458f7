package irc

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/csyork/csbot/pkg/bus"
	"github.com/csyork/csbot/pkg/identity"
)

const (
	ctcpDelim  = "\x01"
	actionVerb = "ACTION"

	rplTopic    = "332"
	rplNamReply = "353"

	// account-notify and extended-join send this for "not logged in"
	noAccount = "*"
)

// Membership prefixes a server may put in front of nicks in a NAMES reply.
const namesPrefixes = "~&@%+"

// translate turns one server message into the bot's inbound event. The bool
// is false for messages the bot does not care about.
func translate(msg ircmsg.Message) (bus.InboundEvent, bool) {
	param := func(i int) string {
		if i < len(msg.Params) {
			return msg.Params[i]
		}
		return ""
	}

	switch msg.Command {
	case "PRIVMSG":
		return translatePrivmsg(msg.Source, param(0), param(1))
	case "JOIN":
		ev := bus.InboundEvent{Kind: bus.KindJoin, User: msg.Source, Target: param(0)}
		if len(msg.Params) >= 3 {
			// extended-join: <channel> <account> :<realname>
			ev.Extra = []string{account(param(1))}
		}
		return ev, true
	case "ACCOUNT":
		return bus.InboundEvent{Kind: bus.KindAccount, User: msg.Source, Text: account(param(0))}, true
	case "PART":
		return bus.InboundEvent{Kind: bus.KindPart, User: msg.Source, Target: param(0), Text: param(1)}, true
	case "KICK":
		// the kicked user only arrives as a nick; the kicker is the source
		return bus.InboundEvent{
			Kind:   bus.KindPart,
			User:   param(1),
			Target: param(0),
			Text:   param(2),
			Extra:  []string{identity.Nick(msg.Source)},
		}, true
	case "QUIT":
		return bus.InboundEvent{Kind: bus.KindQuit, User: msg.Source, Text: param(0)}, true
	case "NICK":
		return bus.InboundEvent{Kind: bus.KindNick, User: msg.Source, Text: param(0)}, true
	case "TOPIC":
		return bus.InboundEvent{Kind: bus.KindTopic, User: msg.Source, Target: param(0), Text: param(1)}, true
	case rplTopic:
		return bus.InboundEvent{Kind: bus.KindTopic, Target: param(1), Text: param(2)}, true
	case rplNamReply:
		// <me> <symbol> <channel> :<nicks>
		return bus.InboundEvent{
			Kind:   bus.KindNames,
			Target: param(2),
			Extra:  parseNames(param(3)),
		}, true
	}
	return bus.InboundEvent{}, false
}

func translatePrivmsg(source, target, text string) (bus.InboundEvent, bool) {
	if !strings.HasPrefix(text, ctcpDelim) {
		return bus.InboundEvent{Kind: bus.KindMessage, User: source, Target: target, Text: text}, true
	}

	body := strings.TrimSuffix(strings.TrimPrefix(text, ctcpDelim), ctcpDelim)
	verb, rest, _ := strings.Cut(body, " ")
	if verb != actionVerb {
		// VERSION, PING and friends are not messages
		return bus.InboundEvent{}, false
	}
	return bus.InboundEvent{Kind: bus.KindAction, User: source, Target: target, Text: rest}, true
}

func account(name string) string {
	if name == noAccount {
		return ""
	}
	return name
}

func parseNames(list string) []string {
	fields := strings.Fields(list)
	nicks := make([]string, 0, len(fields))
	for _, f := range fields {
		if nick := strings.TrimLeft(f, namesPrefixes); nick != "" {
			nicks = append(nicks, nick)
		}
	}
	return nicks
}
