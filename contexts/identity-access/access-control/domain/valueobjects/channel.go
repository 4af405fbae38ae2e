package valueobjects

import (
	"fmt"
	"strings"
)

// ChannelKind discriminates the four channel families.
type ChannelKind string

const (
	ChannelMain      ChannelKind = "main"
	ChannelModerator ChannelKind = "moderator"
	ChannelSocial    ChannelKind = "social"
	ChannelPrivate   ChannelKind = "private"
)

const privatePrefix = "private:"

// Channel identifies a realtime topic. Private channels carry the unordered
// participant pair, canonicalized by sorting, so the key scheme here matches
// the message store key scheme exactly.
type Channel struct {
	Kind         ChannelKind
	Participants [2]string
}

func Main() Channel      { return Channel{Kind: ChannelMain} }
func Moderator() Channel { return Channel{Kind: ChannelModerator} }
func Social() Channel    { return Channel{Kind: ChannelSocial} }

// Private builds the canonical channel for a participant pair.
func Private(a string, b string) (Channel, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" || a == b || strings.Contains(a, ":") || strings.Contains(b, ":") {
		return Channel{}, fmt.Errorf("invalid private channel pair %q, %q", a, b)
	}
	if a > b {
		a, b = b, a
	}
	return Channel{Kind: ChannelPrivate, Participants: [2]string{a, b}}, nil
}

// Parse resolves a channel key such as "main" or "private:alice:bob".
func Parse(name string) (Channel, error) {
	name = strings.TrimSpace(name)
	switch ChannelKind(name) {
	case ChannelMain:
		return Main(), nil
	case ChannelModerator:
		return Moderator(), nil
	case ChannelSocial:
		return Social(), nil
	}
	if strings.HasPrefix(name, privatePrefix) {
		parts := strings.Split(strings.TrimPrefix(name, privatePrefix), ":")
		if len(parts) != 2 {
			return Channel{}, fmt.Errorf("invalid private channel key %q", name)
		}
		return Private(parts[0], parts[1])
	}
	return Channel{}, fmt.Errorf("unknown channel %q", name)
}

// Key returns the canonical channel identifier.
func (c Channel) Key() string {
	if c.Kind == ChannelPrivate {
		return privatePrefix + c.Participants[0] + ":" + c.Participants[1]
	}
	return string(c.Kind)
}

// IsParticipant reports whether handle is one of the two private-pair members.
// Always false for non-private channels.
func (c Channel) IsParticipant(handle string) bool {
	if c.Kind != ChannelPrivate {
		return false
	}
	return handle == c.Participants[0] || handle == c.Participants[1]
}
