package chat

import "strings"

const maxTitleRunes = 40

// DeriveTitle computes a display title from the first message of a
// conversation. The text is trimmed; an empty result falls back to
// DefaultTitle, and anything longer than 40 runes is truncated with an
// ellipsis marker.
func DeriveTitle(firstMessageText string) string {
	title := strings.TrimSpace(firstMessageText)
	if title == "" {
		return DefaultTitle
	}
	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		return string(runes[:maxTitleRunes]) + "..."
	}
	return title
}
