package topics

import (
	"fmt"
	"strings"

	"basegraph.app/cadence/common"
	"basegraph.app/cadence/internal/model"
)

// ClusterKeywords builds one cluster per distinct primary keyword and attaches
// each secondary keyword to the cluster it shares the most words with. A
// secondary keyword sharing no words goes to the cluster holding the fewest
// secondaries so far.
func ClusterKeywords(primary, secondary []string) []model.KeywordCluster {
	clusters := make([]model.KeywordCluster, 0, len(primary))
	tokens := make([]map[string]struct{}, 0, len(primary))
	seen := make(map[string]struct{})
	taken := make(map[string]struct{})

	for _, kw := range primary {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		id, err := common.Slugify(kw, fmt.Sprintf("cluster-%d", len(clusters)+1))
		if err != nil {
			continue
		}
		id = uniqueID(id, taken)

		clusters = append(clusters, model.KeywordCluster{
			ID:               id,
			Label:            labelFor(kw),
			PrimaryKeyword:   kw,
			PerformanceState: model.PerformanceUnknown,
			Weight:           1,
		})
		tokens = append(tokens, tokenSet(kw))
	}
	if len(clusters) == 0 {
		return clusters
	}

	for _, kw := range secondary {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		best, bestScore := -1, 0
		for i := range clusters {
			if score := overlap(tokens[i], common.Tokens(kw)); score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			best = 0
			for i := range clusters {
				if len(clusters[i].SecondaryKeywords) < len(clusters[best].SecondaryKeywords) {
					best = i
				}
			}
		}
		clusters[best].SecondaryKeywords = append(clusters[best].SecondaryKeywords, kw)
	}

	return clusters
}

// labelFor capitalizes the first letter of every word.
func labelFor(kw string) string {
	words := strings.Fields(kw)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range common.Tokens(s) {
		set[t] = struct{}{}
	}
	return set
}

func overlap(set map[string]struct{}, tokens []string) int {
	score := 0
	for _, t := range tokens {
		if _, ok := set[t]; ok {
			score++
		}
	}
	return score
}

// uniqueID returns base, or base-N for the smallest N >= 2 not yet taken, and
// marks the result taken. A suffixed id may equal another keyword's plain
// slug, so every candidate is checked.
func uniqueID(base string, taken map[string]struct{}) string {
	id := base
	for n := 2; ; n++ {
		if _, ok := taken[id]; !ok {
			break
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
	taken[id] = struct{}{}
	return id
}
