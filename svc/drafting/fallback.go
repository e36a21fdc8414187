package drafting

import "strings"

const fallbackNotes = "\n\n## Notes\n\n- Performance and stability improvements\n- Internal tooling refinements"

// Fallback renders changes as a bulleted Highlights section. Each non-empty
// line becomes one bullet; a leading "-" or "*" marker is not repeated.
func Fallback(changes string) string {
	var bullets []string
	for line := range strings.Lines(changes) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line[0] == '-' || line[0] == '*' {
			line = strings.TrimPrefix(line[1:], " ")
		}
		bullets = append(bullets, "- "+line)
	}
	return "## Highlights\n\n" + strings.Join(bullets, "\n") + fallbackNotes
}
