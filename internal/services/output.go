package services

import "strings"

// SummarizeOutput keeps the last non-empty line of subprocess output. The
// external tools print their failure reason there.
func SummarizeOutput(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
