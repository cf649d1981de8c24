package auth

import (
	"strings"
)

// Purpose selects the delegated scopes requested for an operation.
type Purpose int

const (
	Read Purpose = iota
	Write
)

func (p Purpose) String() string {
	switch p {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "unknown"
	}
}

// Strategy is an authorization flow.
type Strategy int

const (
	Application Strategy = iota
	Delegated
)

func (s Strategy) String() string {
	switch s {
	case Application:
		return "application"
	case Delegated:
		return "delegated"
	default:
		return "unknown"
	}
}

const GraphDefaultScope = "https://graph.microsoft.com/.default"

var oidc = []string{"openid", "profile", "offline_access"}

// Scopes returns the delegated scopes for a purpose.
func Scopes(purpose Purpose) []string {
	switch purpose {
	case Write:
		return append([]string{"Files.ReadWrite.All", "Sites.Read.All"}, oidc...)
	default:
		return append([]string{"Files.Read.All", "Sites.Read.All"}, oidc...)
	}
}

// covers returns true if every wanted scope is granted, either directly or by the
// corresponding ReadWrite scope.
func covers(granted []string, wanted []string) bool {
	for _, w := range wanted {
		ok := false
		for _, g := range granted {
			if strings.EqualFold(g, w) || strings.EqualFold(g, strings.Replace(w, ".Read.", ".ReadWrite.", 1)) {
				ok = true
				break
			}
		}

		if !ok {
			return false
		}
	}

	return true
}
