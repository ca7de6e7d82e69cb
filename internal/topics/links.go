package topics

import (
	"sort"

	"basegraph.app/cadence/common"
	"basegraph.app/cadence/internal/model"
)

const (
	maxInternalLinks = 3
	maxExternalLinks = 2
)

func ChooseInternalLinks(all []model.LinkSuggestion, cluster model.KeywordCluster) []model.LinkSuggestion {
	return chooseLinks(all, cluster, maxInternalLinks)
}

func ChooseExternalLinks(all []model.LinkSuggestion, cluster model.KeywordCluster) []model.LinkSuggestion {
	return chooseLinks(all, cluster, maxExternalLinks)
}

// chooseLinks ranks links by how many cluster keyword words appear in their
// URL or title and keeps the best matches. Links matching nothing are never
// suggested; equal scores keep input order.
func chooseLinks(all []model.LinkSuggestion, cluster model.KeywordCluster, limit int) []model.LinkSuggestion {
	words := tokenSet(cluster.PrimaryKeyword)
	for _, kw := range cluster.SecondaryKeywords {
		for _, t := range common.Tokens(kw) {
			words[t] = struct{}{}
		}
	}

	type scored struct {
		link  model.LinkSuggestion
		score int
	}
	candidates := make([]scored, 0, len(all))
	seen := make(map[string]struct{}, len(all))
	for _, link := range all {
		if link.URL == "" {
			continue
		}
		if _, dup := seen[link.URL]; dup {
			continue
		}
		seen[link.URL] = struct{}{}

		linkWords := tokenSet(link.URL + " " + link.Title)
		score := 0
		for w := range words {
			if _, ok := linkWords[w]; ok {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{link: link, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]model.LinkSuggestion, len(candidates))
	for i, c := range candidates {
		out[i] = c.link
	}
	return out
}
