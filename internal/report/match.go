package report

import (
	"sort"
	"strings"

	"dailyreport/internal/domain"
)

// MatchSamples finds the samples belonging to a mapping SourceName. Source
// exports rename measurement points between firmware revisions, so matching
// is staged from strict to loose:
//
//  1. exact name equality
//  2. case-insensitive substring (sample name contains the whole source name)
//  3. AND over whitespace-split keywords, each a case-insensitive substring
//
// The first stage that yields anything wins.
func MatchSamples(samples []domain.Sample, sourceName string) []domain.Sample {
	name := strings.TrimSpace(sourceName)
	if name == "" || len(samples) == 0 {
		return nil
	}

	var exact []domain.Sample
	for _, s := range samples {
		if s.Name == name {
			exact = append(exact, s)
		}
	}
	if len(exact) > 0 {
		return exact
	}

	lower := strings.ToLower(name)
	var contains []domain.Sample
	for _, s := range samples {
		if strings.Contains(strings.ToLower(s.Name), lower) {
			contains = append(contains, s)
		}
	}
	if len(contains) > 0 {
		return contains
	}

	keywords := strings.Fields(lower)
	if len(keywords) == 0 {
		return nil
	}
	var all []domain.Sample
	for _, s := range samples {
		n := strings.ToLower(s.Name)
		ok := true
		for _, kw := range keywords {
			if !strings.Contains(n, kw) {
				ok = false
				break
			}
		}
		if ok {
			all = append(all, s)
		}
	}
	return all
}

// MissCandidates suggests sample names that partially match a SourceName
// that produced no data: candidates are scored by how many of the source
// name's keywords they contain, sorted by score descending then name, and
// capped at topK. Used only for the miss diagnostic log line.
func MissCandidates(samples []domain.Sample, sourceName string, topK int) []string {
	if topK <= 0 || len(samples) == 0 {
		return nil
	}

	keywords := strings.Fields(strings.ToLower(strings.TrimSpace(sourceName)))
	if len(keywords) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var names []string
	for _, s := range samples {
		if _, ok := seen[s.Name]; !ok {
			seen[s.Name] = struct{}{}
			names = append(names, s.Name)
		}
	}

	type hit struct {
		score int
		name  string
	}
	var hits []hit
	for _, n := range names {
		low := strings.ToLower(n)
		score := 0
		for _, kw := range keywords {
			if strings.Contains(low, kw) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, hit{score: score, name: n})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].name < hits[j].name
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}
