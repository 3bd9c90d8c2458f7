// Package identity splits IRC user strings ("nick!user@host") and classifies
// message targets.
package identity

import "strings"

// User is a parsed IRC user string. Missing parts are empty.
type User struct {
	Raw  string
	Nick string
	User string
	Host string
}

// Parse splits raw into its nick, username and host parts. Leading "~"
// characters on the username are dropped.
func Parse(raw string) User {
	u := User{Raw: raw}
	rest := raw
	if i := strings.IndexByte(rest, '@'); i >= 0 {
		u.Host = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '!'); i >= 0 {
		u.User = strings.TrimLeft(rest[i+1:], "~")
		rest = rest[:i]
	}
	u.Nick = rest
	return u
}

// Nick returns the nick part of a user string.
//
//	Nick("csyorkbot!~csbot@example.com") == "csyorkbot"
func Nick(user string) string {
	nick, _, _ := strings.Cut(user, "!")
	return nick
}

// Username returns the username part of a user string, without "~".
func Username(user string) string {
	return Parse(user).User
}

// Host returns the host part of a user string.
func Host(user string) string {
	return Parse(user).Host
}

// IsChannel reports whether target names a channel rather than a private
// conversation.
func IsChannel(target string) bool {
	return strings.HasPrefix(target, "#")
}
