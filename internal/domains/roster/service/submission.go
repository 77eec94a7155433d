package service

import (
	"fmt"
	"strings"

	"lw-rpg-backend/internal/domains/character/model"
	"lw-rpg-backend/internal/domains/roster"
	rosterModel "lw-rpg-backend/internal/domains/roster/model"
)

const submissionFooter = "*This submission was generated from the LW admin interface.*"

type submission struct {
	Title   string
	Message string
	Body    string
}

// buildSubmission dựng commit message + body (markdown) từ change log.
// Record của add/update được đọc từ store hiện tại theo tên (nếu còn).
func buildSubmission(changes []rosterModel.Change, st *roster.Store) submission {
	if len(changes) == 0 {
		return submission{
			Title:   "Update roster",
			Message: "Update roster",
			Body:    "## Roster Update\n\nRoster document re-submitted without recorded changes.\n\n---\n" + submissionFooter,
		}
	}

	current := make(map[string]model.Character, st.Count())
	for _, c := range st.Characters() {
		current[c.Name] = c
	}

	if len(changes) == 1 {
		ch := changes[0]
		c, ok := current[ch.Name]
		var b strings.Builder
		writeChangeSection(&b, ch, c, ok, 2)
		b.WriteString("\n---\n")
		b.WriteString(submissionFooter)
		return submission{
			Title:   changeTitle(ch),
			Message: commitLine(ch),
			Body:    b.String(),
		}
	}

	var msg, body strings.Builder
	fmt.Fprintf(&msg, "Update roster: %d changes\n", len(changes))
	fmt.Fprintf(&body, "## Roster Update\n\n%d changes in this submission.\n", len(changes))
	for _, ch := range changes {
		msg.WriteString("\n")
		msg.WriteString(commitLine(ch))
		body.WriteString("\n")
		c, ok := current[ch.Name]
		writeChangeSection(&body, ch, c, ok, 3)
	}
	body.WriteString("\n---\n")
	body.WriteString(submissionFooter)

	return submission{
		Title:   fmt.Sprintf("Roster Update: %d changes", len(changes)),
		Message: msg.String(),
		Body:    body.String(),
	}
}

func commitLine(ch rosterModel.Change) string {
	switch ch.Kind {
	case rosterModel.ChangeAdd:
		return "Add new character: " + ch.Name
	case rosterModel.ChangeUpdate:
		return "Update character: " + ch.Name
	default:
		return "Delete character: " + ch.Name
	}
}

func changeTitle(ch rosterModel.Change) string {
	switch ch.Kind {
	case rosterModel.ChangeAdd:
		return "Add New Character: " + ch.Name
	case rosterModel.ChangeUpdate:
		return "Update Character: " + ch.Name
	default:
		return "Delete Character: " + ch.Name
	}
}

func changeHeading(kind rosterModel.ChangeKind) string {
	switch kind {
	case rosterModel.ChangeAdd:
		return "New Character Added"
	case rosterModel.ChangeUpdate:
		return "Character Update"
	default:
		return "Character Removed"
	}
}

func writeChangeSection(b *strings.Builder, ch rosterModel.Change, c model.Character, found bool, level int) {
	h := strings.Repeat("#", level)
	fmt.Fprintf(b, "%s %s\n\n**Character Name:** %s\n", h, changeHeading(ch.Kind), ch.Name)
	if ch.Kind == rosterModel.ChangeDelete || !found {
		return
	}

	flying := "No"
	if c.IsFlying {
		flying = "Yes"
	}
	fmt.Fprintf(b, "**Subclass:** %s\n\n", c.Subclass)
	fmt.Fprintf(b, "%s# Stats:\n", h)
	fmt.Fprintf(b, "- Health: %d\n- Attack: %d\n- Defense: %d\n- Will: %d\n- Speed: %d\n- Flying: %s\n\n",
		c.Health, c.Attack, c.Defense, c.Will, c.Speed, flying)
	fmt.Fprintf(b, "%s# Abilities:\n", h)
	for _, attack := range c.Attacks {
		fmt.Fprintf(b, "- %s\n", attack)
	}
}
