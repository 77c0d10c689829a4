package policy

import (
	"strings"

	"github.com/antoniostano/babybot/internal/intent"
)

// Oracle decides whether an actor may run privileged behaviors (roasts,
// roast songs, command relays).
type Oracle struct {
	ids map[string]struct{}
}

func NewOracle(privilegedIDs []string) Oracle {
	ids := make(map[string]struct{}, len(privilegedIDs))
	for _, id := range privilegedIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids[id] = struct{}{}
		}
	}
	return Oracle{ids: ids}
}

// IsPrivileged is true for configured actor ids and for actors holding an
// elevated role in the current guild.
func (o Oracle) IsPrivileged(actor intent.Actor) bool {
	if actor.Elevated {
		return true
	}
	_, ok := o.ids[strings.TrimSpace(actor.ID)]
	return ok
}

// Size returns the number of configured privileged ids.
func (o Oracle) Size() int { return len(o.ids) }
