package catalog

import (
	"fmt"
	"math/rand"

	"pypl2mp3/internal/fuzzy"
)

// Selection is an ephemeral ordered view over catalog songs, rebuilt per
// invocation. Scores are zero when no filter was applied.
type Selection struct {
	Songs  []Song
	Scores []int
}

// Select filters songs by state and free-text query. With an empty query
// every song passes in catalog order; otherwise songs are ranked by
// fuzzy match score against their display name and cut at the threshold.
func Select(songs []Song, query string, threshold int, junkOnly bool) Selection {
	pool := songs
	if junkOnly {
		pool = nil
		for _, s := range songs {
			if s.State == StateJunk {
				pool = append(pool, s)
			}
		}
	}

	names := make([]string, len(pool))
	for i, s := range pool {
		names[i] = s.DisplayName()
	}

	matches := fuzzy.Rank(query, names, threshold)
	sel := Selection{
		Songs:  make([]Song, len(matches)),
		Scores: make([]int, len(matches)),
	}
	for i, m := range matches {
		sel.Songs[i] = pool[m.Index]
		sel.Scores[i] = m.Score
	}
	return sel
}

// Pick narrows a selection to the song at the given 1-based index.
// Index 0 picks a random song.
func (sel Selection) Pick(index int) (Selection, error) {
	if len(sel.Songs) == 0 {
		return Selection{}, fmt.Errorf("no songs to pick from")
	}
	if index < 0 || index > len(sel.Songs) {
		return Selection{}, fmt.Errorf("song index %d is out of range (1-%d)", index, len(sel.Songs))
	}
	i := index - 1
	if index == 0 {
		i = rand.Intn(len(sel.Songs))
	}
	return Selection{Songs: []Song{sel.Songs[i]}, Scores: []int{sel.Scores[i]}}, nil
}
