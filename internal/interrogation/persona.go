package interrogation

import (
	"fmt"
	"github.com/myrjola/whodunit/internal/models"
	"strings"
)

// personaPrompt seeds a suspect's conversation with the ground truth the dialogue service has to stay faithful to.
// It also teaches the two phrase templates the extractor recognises.
func personaPrompt(sc *models.Scenario, gt models.SuspectGroundTruth) string {
	var b strings.Builder
	v := sc.Victim
	fmt.Fprintf(&b, "You are %s, a %s, questioned by a detective about the death of the %s.\n",
		gt.Name, gt.Profession, v.Profession)
	fmt.Fprintf(&b, "The %s was killed by %s in the %s around %s.\n", v.Profession, v.DeathMethod, v.Room.Name,
		v.TimeOfDeath)
	if gt.ID == sc.Culprit {
		fmt.Fprintf(&b, "You are the killer, driven by %s. Never confess.\n", v.Motive)
	}
	fmt.Fprintf(&b, "When asked where you were, answer exactly: \"I was in the %s from %s to %s\".\n",
		gt.Alibi.Room.Name, gt.Alibi.Window.Start, gt.Alibi.Window.End)
	for _, o := range gt.Observations {
		name := o.Person
		if seen, ok := sc.Suspect(o.Person); ok {
			name = seen.Name
		}
		fmt.Fprintf(&b, "If asked what you saw, answer exactly: \"Saw %s in the %s around %s\".\n",
			name, o.Room.Name, o.Window.Start)
	}
	b.WriteString("Otherwise stay in character and keep answers short.")
	return b.String()
}
