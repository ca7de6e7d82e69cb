package topics

import (
	"fmt"
	"strings"

	"basegraph.app/cadence/internal/model"
)

// BuildTopicTitle returns the working title for an item about the cluster on
// the given channel.
func BuildTopicTitle(cluster model.KeywordCluster, primaryKeyword string, channel model.Channel) string {
	kw := strings.TrimSpace(primaryKeyword)
	if kw == "" {
		kw = cluster.Label
	}
	subject := capitalize(kw)

	switch channel {
	case model.ChannelBlog:
		if len(cluster.SecondaryKeywords) > 0 {
			return fmt.Sprintf("%s: a practical guide to %s", subject, cluster.SecondaryKeywords[0])
		}
		return fmt.Sprintf("%s: a practical guide", subject)
	case model.ChannelLinkedIn:
		return fmt.Sprintf("What we learned about %s this week", kw)
	case model.ChannelNewsletter:
		return fmt.Sprintf("This week in %s", cluster.Label)
	case model.ChannelLanding:
		return fmt.Sprintf("%s solutions that fit your team", subject)
	default:
		return subject
	}
}
