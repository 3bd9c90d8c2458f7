package bot

import (
	"github.com/csyork/csbot/pkg/config"
	"github.com/csyork/csbot/pkg/logger"
)

// Decision is what the transport should do after a connection problem.
type Decision int

const (
	Reconnect Decision = iota
	Stop
)

func (d Decision) String() string {
	switch d {
	case Reconnect:
		return "reconnect"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// ConnectionPolicy carries the connection-level settings and decides how
// the transport reacts to failures: a dropped connection is retried, a
// failed first connect is fatal.
type ConnectionPolicy struct {
	Channels      []string
	CommandPrefix string
}

func PolicyFromConfig(core config.Core) ConnectionPolicy {
	return ConnectionPolicy{
		Channels:      core.Channels,
		CommandPrefix: core.CommandPrefix,
	}
}

func (p ConnectionPolicy) OnConnectionLost(reason error) Decision {
	fields := map[string]any{"decision": Reconnect.String()}
	if reason != nil {
		fields["reason"] = reason.Error()
	}
	logger.WarnCF("bot", "Connection lost", fields)
	return Reconnect
}

func (p ConnectionPolicy) OnConnectFailed(err error) Decision {
	fields := map[string]any{"decision": Stop.String()}
	if err != nil {
		fields["error"] = err.Error()
	}
	logger.ErrorCF("bot", "Connect failed", fields)
	return Stop
}
