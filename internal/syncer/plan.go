// Package syncer reconciles remote playlists against the local catalog.
// Sync is additive only: a plan never proposes removing or rewriting a
// local file, whatever happened to the remote playlist.
package syncer

import (
	"pypl2mp3/internal/catalog"
	"pypl2mp3/internal/fuzzy"
	"pypl2mp3/internal/youtube"
)

// Plan diffs the remote track list against the local song set and
// returns the tracks to import, preserving remote playlist order. A
// local song keeps its id claimed whatever its state, so junk songs and
// hand-modified files are never re-imported. With a non-empty filter, a
// candidate must also score at or above the threshold against its
// remote author and title.
func Plan(remote []youtube.Track, local []catalog.Song, filter string, threshold int) []youtube.Track {
	have := catalog.VideoIDs(local)

	var plan []youtube.Track
	for _, track := range remote {
		if have[track.VideoID] {
			continue
		}
		if filter != "" && fuzzy.Score(filter, track.SearchText()) < threshold {
			continue
		}
		plan = append(plan, track)
	}
	return plan
}
