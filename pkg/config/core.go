package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Keys of the DEFAULT section read by the bot itself.
const (
	KeyNickname      = "nickname"
	KeyUsername      = "username"
	KeyRealname      = "realname"
	KeySourceURL     = "source_url"
	KeyLineRate      = "line_rate"
	KeyCommandPrefix = "command_prefix"
	KeyChannels      = "channels"
	KeyIRCHost       = "irc_host"
	KeyIRCPort       = "irc_port"
	KeyPlugins       = "plugins"
)

// Core holds the typed DEFAULT settings. Environment variables override the
// file, the same way they override JSON config elsewhere.
type Core struct {
	Nickname      string   `env:"CSBOT_NICKNAME"`
	Username      string   `env:"CSBOT_USERNAME"`
	Realname      string   `env:"CSBOT_REALNAME"`
	SourceURL     string   `env:"CSBOT_SOURCE_URL"`
	LineRate      float64  `env:"CSBOT_LINE_RATE"`
	CommandPrefix string   `env:"CSBOT_COMMAND_PREFIX"`
	Channels      []string `env:"CSBOT_CHANNELS" envSeparator:","`
	IRCHost       string   `env:"CSBOT_IRC_HOST"`
	IRCPort       int      `env:"CSBOT_IRC_PORT"`
	// Plugins lists built-in plugins to load, in order. Empty means all.
	Plugins []string `env:"CSBOT_PLUGINS" envSeparator:","`
}

// Server returns the host:port address to dial.
func (c Core) Server() string {
	return c.IRCHost + ":" + strconv.Itoa(c.IRCPort)
}

func builtinDefaults() map[string]string {
	return map[string]string{
		KeyNickname:      "csyorkbot",
		KeyUsername:      "csyorkbot",
		KeyRealname:      "cs-york bot",
		KeySourceURL:     "http://github.com/csyork/csbot/",
		KeyLineRate:      "1",
		KeyCommandPrefix: "!",
		KeyChannels:      "",
		KeyIRCHost:       "irc.freenode.net",
		KeyIRCPort:       "6667",
	}
}

func parseCore(values map[string]string) (Core, error) {
	core := Core{
		Nickname:      values[KeyNickname],
		Username:      values[KeyUsername],
		Realname:      values[KeyRealname],
		SourceURL:     values[KeySourceURL],
		CommandPrefix: values[KeyCommandPrefix],
		Channels:      SplitList(values[KeyChannels]),
		IRCHost:       values[KeyIRCHost],
		Plugins:       SplitList(values[KeyPlugins]),
	}

	rate, err := strconv.ParseFloat(strings.TrimSpace(values[KeyLineRate]), 64)
	if err != nil {
		return Core{}, fmt.Errorf("invalid %s %q: %w", KeyLineRate, values[KeyLineRate], err)
	}
	core.LineRate = rate

	port, err := strconv.Atoi(strings.TrimSpace(values[KeyIRCPort]))
	if err != nil {
		return Core{}, fmt.Errorf("invalid %s %q: %w", KeyIRCPort, values[KeyIRCPort], err)
	}
	core.IRCPort = port

	return core, nil
}

func (c *Core) applyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("applying environment overrides: %w", err)
	}
	if c.LineRate <= 0 {
		return fmt.Errorf("%s must be positive, got %v", KeyLineRate, c.LineRate)
	}
	return nil
}

// store writes the (possibly overridden) values back so plugin lookups agree
// with what the bot uses.
func (c Core) store(values map[string]string) {
	values[KeyNickname] = c.Nickname
	values[KeyUsername] = c.Username
	values[KeyRealname] = c.Realname
	values[KeySourceURL] = c.SourceURL
	values[KeyLineRate] = strconv.FormatFloat(c.LineRate, 'f', -1, 64)
	values[KeyCommandPrefix] = c.CommandPrefix
	values[KeyChannels] = strings.Join(c.Channels, " ")
	values[KeyIRCHost] = c.IRCHost
	values[KeyIRCPort] = strconv.Itoa(c.IRCPort)
	if len(c.Plugins) > 0 {
		values[KeyPlugins] = strings.Join(c.Plugins, " ")
	}
}

// SplitList splits a space- or comma-separated config value.
func SplitList(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
