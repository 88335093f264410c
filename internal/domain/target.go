package domain

import "strings"

const (
	// DirectSuffix is appended to a bare phone number to address a direct chat.
	DirectSuffix = "@c.us"

	// GroupSuffix marks a conversation identifier as a group chat.
	GroupSuffix = "@g.us"
)

// Target is a resolved conversation identifier.
type Target string

// String returns the identifier as sent to the session client.
func (t Target) String() string { return string(t) }

// IsGroup reports whether the target addresses a group chat.
func (t Target) IsGroup() bool { return strings.Contains(string(t), GroupSuffix) }

// ResolveTarget picks the conversation identifier for a send.
// An explicit chatID is used verbatim. Otherwise number is normalized by
// appending DirectSuffix unless it already contains GroupSuffix.
// Returns ErrMissingTarget when both are empty.
func ResolveTarget(chatID, number string) (Target, error) {
	switch {
	case chatID != "":
		return Target(chatID), nil
	case number != "":
		if strings.Contains(number, GroupSuffix) {
			return Target(number), nil
		}
		return Target(number + DirectSuffix), nil
	default:
		return "", ErrMissingTarget
	}
}
