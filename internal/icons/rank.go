package icons

import (
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	phraseScore    = 50
	substringScore = 10
	wholeWordScore = 12
	proximityBonus = 5
	startBonus     = 3
	fuzzyMinLen    = 3
	fuzzyThreshold = 0.6
)

// Match is one ranked catalog entry. Fuzzy terms are reported as
// "term~word".
type Match struct {
	Name  string   `json:"name"`
	Score float64  `json:"score"`
	Terms []string `json:"terms"`
}

type hit struct {
	pos int
	len int
}

// Rank scores every name against query and returns the non-zero ones,
// best first. Names are ordered lexically before the stable sort, so equal
// scores come out in catalog order whatever order the caller used.
func Rank(names []string, query string) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	terms := strings.Fields(query)

	ordered := make([]string, len(names))
	copy(ordered, names)
	sort.Strings(ordered)

	var out []Match
	for _, name := range ordered {
		m := score(name, query, terms)
		if m.Score > 0 {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func score(name, query string, terms []string) Match {
	stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	words := stemWords(stem)
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}

	m := Match{Name: name}
	var hits []hit

	if idx := strings.Index(stem, query); idx >= 0 {
		m.Score += phraseScore
		hits = append(hits, hit{pos: idx, len: len(query)})
	}

	for _, term := range terms {
		idx := strings.Index(stem, term)
		switch {
		case wordSet[term]:
			m.Score += wholeWordScore
		case idx >= 0:
			m.Score += substringScore
		default:
			continue
		}
		m.Terms = append(m.Terms, term)
		hits = append(hits, hit{pos: idx, len: len(term)})
	}

	if len(m.Terms) == 0 {
		for _, term := range terms {
			if utf8.RuneCountInString(term) < fuzzyMinLen {
				continue
			}
			for _, word := range words {
				if utf8.RuneCountInString(word) < fuzzyMinLen {
					continue
				}
				ratio := overlap(term, word)
				if ratio > fuzzyThreshold {
					m.Score += substringScore * ratio
					m.Terms = append(m.Terms, term+"~"+word)
				}
			}
		}
	}

	if len(hits) > 1 {
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
		for i := 0; i+1 < len(hits); i++ {
			if hits[i+1].pos-hits[i].pos < 2+hits[i].len {
				m.Score += proximityBonus
			}
		}
	}
	for _, h := range hits {
		if h.pos < 3 {
			m.Score += startBonus
			break
		}
	}
	return m
}

// stemWords splits a lowercase stem on '_', '-' and whitespace, keeping
// the first occurrence of each word in order.
func stemWords(stem string) []string {
	fields := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '\t'
	})
	seen := make(map[string]bool, len(fields))
	words := fields[:0]
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		words = append(words, f)
	}
	return words
}

// overlap is the share of term characters found anywhere in word,
// relative to the longer of the two.
func overlap(term, word string) float64 {
	termRunes := []rune(term)
	wordRunes := []rune(word)
	present := 0
	for _, r := range termRunes {
		if strings.ContainsRune(word, r) {
			present++
		}
	}
	longest := len(termRunes)
	if len(wordRunes) > longest {
		longest = len(wordRunes)
	}
	return float64(present) / float64(longest)
}
