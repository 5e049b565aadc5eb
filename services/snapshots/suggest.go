package snapshots

import (
	"offerscope-backend/lib/textutil"

	"github.com/antzucaro/matchr"
)

const minRenameSimilarity = 0.75

// Rename is an advisory pairing between a merchant that vanished from
// the page and one that newly appeared, suggesting the site renamed it.
// It never influences matching, only gets surfaced to the user.
type Rename struct {
	From       string
	To         string
	Similarity float64
}

// SuggestRenames pairs the merchants of zeroed records against merchants
// first seen this run by Jaro-Winkler similarity. Each side is consumed
// at most once, best pairs first.
func SuggestRenames(previous, next Snapshot) []Rename {
	var vanished, appeared []string
	for _, r := range next.Records {
		prev, existed := previous.Get(r.Key)
		switch {
		case r.Amount == 0 && (!existed || prev.Amount != 0):
			vanished = append(vanished, r.Merchant)
		case !existed:
			appeared = append(appeared, r.Merchant)
		}
	}

	matched := make(map[string]struct{})
	var result []Rename
	for _, from := range vanished {
		var best string
		var bestSim float64
		for _, to := range appeared {
			if _, taken := matched[to]; taken {
				continue
			}
			// case or spacing differences are not a rename
			if textutil.NormalizeName(from) == textutil.NormalizeName(to) {
				continue
			}
			sim := matchr.JaroWinkler(from, to, false)
			if sim > bestSim {
				bestSim = sim
				best = to
			}
		}
		if bestSim >= minRenameSimilarity {
			matched[best] = struct{}{}
			result = append(result, Rename{From: from, To: best, Similarity: bestSim})
		}
	}
	return result
}
