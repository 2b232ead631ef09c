package pipeline

import "strings"

const (
	headerLines = 3
	footerLines = 3
)

// CleanPageText drops probable header and footer lines by position.
// Line i is dropped when i < 3 or i > len-3, so short pages may come back empty.
func CleanPageText(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if i < headerLines || i > len(lines)-footerLines {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
