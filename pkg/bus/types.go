package bus

// Kind identifies what an InboundEvent carries.
type Kind int

const (
	KindConnected Kind = iota
	KindDisconnected
	KindMessage
	KindAction
	KindJoin
	KindPart
	KindQuit
	KindNick
	KindTopic
	KindNames
	// KindAccount reports a user's services account; Text is empty on logout.
	KindAccount
	// KindHook carries a plugin-emitted hook (Hook + Payload).
	KindHook
)

var kindNames = map[Kind]string{
	KindConnected:    "connected",
	KindDisconnected: "disconnected",
	KindMessage:      "message",
	KindAction:       "action",
	KindJoin:         "join",
	KindPart:         "part",
	KindQuit:         "quit",
	KindNick:         "nick",
	KindTopic:        "topic",
	KindNames:        "names",
	KindAccount:      "account",
	KindHook:         "hook",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// InboundEvent is one thing that happened on the connection, or a hook a
// plugin asked to broadcast. Unused fields are empty.
type InboundEvent struct {
	Kind Kind
	// User is the source identity ("nick!user@host").
	User string
	// Target is the channel or nick the event is about.
	Target string
	// Text is the message, action, topic, part/quit reason or new nick.
	Text string
	// Extra holds kind-specific values: the kicker for kicks, the listed
	// nicks for names, the account for extended joins.
	Extra []string
	// Err is the disconnect reason.
	Err error

	Hook    string
	Payload any
}

// Outbound commands.
const (
	CommandPrivmsg = "PRIVMSG"
	CommandJoin    = "JOIN"
)

type OutboundMessage struct {
	Command string `json:"command"`
	Target  string `json:"target"`
	Content string `json:"content,omitempty"`
}
