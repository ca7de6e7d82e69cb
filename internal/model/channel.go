package model

import "strings"

type Channel string

const (
	ChannelBlog       Channel = "blog"
	ChannelLinkedIn   Channel = "linkedin"
	ChannelNewsletter Channel = "newsletter"
	ChannelLanding    Channel = "landing"
)

// ChannelPriority is the fixed channel order. It filters unknown channel
// values and breaks output ties.
var ChannelPriority = []Channel{ChannelBlog, ChannelLinkedIn, ChannelNewsletter, ChannelLanding}

// Rank returns the channel's index in ChannelPriority, or len(ChannelPriority)
// for unknown channels.
func (c Channel) Rank() int {
	for i, known := range ChannelPriority {
		if c == known {
			return i
		}
	}
	return len(ChannelPriority)
}

func (c Channel) Valid() bool {
	return c.Rank() < len(ChannelPriority)
}

// ParseChannel normalizes user input into a Channel. The boolean is false for
// values outside ChannelPriority.
func ParseChannel(raw string) (Channel, bool) {
	ch := Channel(strings.ToLower(strings.TrimSpace(raw)))
	return ch, ch.Valid()
}
