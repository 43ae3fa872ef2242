package auth

import (
	log "github.com/sirupsen/logrus"
)

// IPAllowlist is the set of client addresses permitted to sign in. IP policy
// is checked before user lookup, so it fully gates even valid credentials.
type IPAllowlist []string

// Contains reports whether the address is allowlisted. An empty allowlist
// denies everything.
func (l IPAllowlist) Contains(address string) bool {
	if len(l) == 0 {
		log.Warn("ip allowlist is empty, denying all logins")
		return false
	}
	for _, allowed := range l {
		if allowed == address {
			return true
		}
	}
	return false
}
