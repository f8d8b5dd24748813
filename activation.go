package controlroom

import "regexp"

// Activation commands are a reserved message syntax that re-targets the
// session to a named kernel instead of being processed as interview speech.
// The command occupies the whole message; anything embedded in prose is
// treated as ordinary text.
var activationRe = regexp.MustCompile(`^\s*@control-room:([a-z][a-z0-9_-]*)\s*$`)

// ActivationCommand names the kernel mode a reserved command targets.
type ActivationCommand struct {
	Mode string
}

// ParseActivation recognizes the reserved command syntax. The second return
// is false for ordinary messages.
func ParseActivation(message string) (*ActivationCommand, bool) {
	m := activationRe.FindStringSubmatch(message)
	if m == nil {
		return nil, false
	}
	return &ActivationCommand{Mode: m[1]}, true
}
