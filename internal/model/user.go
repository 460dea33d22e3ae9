package model

import (
	"net"
	"regexp"
	"strings"
	"time"
)

// ipv4Pattern matches dotted-quad IPv4 literals, which is how anonymous
// editors appear in revision histories.
var ipv4Pattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// IsAnonymous reports whether a revision author is an IP editor rather than
// a registered account. IP editors have no account record upstream.
func IsAnonymous(user string) bool {
	if ipv4Pattern.MatchString(user) {
		return true
	}
	return strings.Contains(user, ":") && net.ParseIP(user) != nil
}

// UserInfo is the account metadata returned by the wiki for a registered user.
type UserInfo struct {
	UserID       int    `json:"userid"`
	Name         string `json:"name"`
	EditCount    int    `json:"editcount"`
	Registration string `json:"registration"`
	Blocked      bool   `json:"blocked"`
	Missing      bool   `json:"missing"`
	Invalid      bool   `json:"invalid"`
}

// AccountAgeDays returns the whole number of days between registration and
// now. A missing or unparseable registration yields 0.
func (u UserInfo) AccountAgeDays(now time.Time) int {
	if u.Registration == "" {
		return 0
	}
	registered, err := time.Parse(time.RFC3339, u.Registration)
	if err != nil {
		return 0
	}
	age := now.Sub(registered)
	if age < 0 {
		return 0
	}
	return int(age.Hours() / 24)
}
