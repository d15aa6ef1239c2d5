package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pypl2mp3/internal/catalog"
	"pypl2mp3/internal/repolock"
	"pypl2mp3/internal/shazam"
	"pypl2mp3/internal/tagging"
)

var fixCmd = &cobra.Command{
	Use:   "fix [index]",
	Short: "Re-run recognition on junk songs.",
	Long: `Submits each selected junk song to the recognition service again. A
confident match promotes the song to a tagged name; anything else
leaves it junk. Useful after a service outage or for songs that failed
recognition on import.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runTransition(args, transitionFix)
	},
}

var junkizeCmd = &cobra.Command{
	Use:   "junkize [index]",
	Short: "Demote tagged songs back to junk.",
	Long: `Strips recognition tags and cover art from the selected tagged songs
and renames them with the junk marker. The artist and title stay
encoded in the filename, so nothing identifying is lost.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runTransition(args, transitionJunkize)
	},
}

var untagCmd = &cobra.Command{
	Use:   "untag [index]",
	Short: "Reset songs to their filename identity.",
	Long: `Drops all recognition metadata and rewrites the tags from what the
filename says, then marks the song junk. This is the manual override
for a recognition result you do not trust.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runTransition(args, transitionUntag)
	},
}

type transition int

const (
	transitionFix transition = iota
	transitionJunkize
	transitionUntag
)

func runTransition(args []string, kind transition) {
	s, err := openSession()
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}
	defer s.Close()

	release, err := repolock.Acquire(s.cfg.RepoDir)
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}
	defer release()

	cat, err := s.scan()
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}
	indexArg := ""
	if len(args) == 1 {
		indexArg = args[0]
	}
	sel, scope, err := s.selectSongs(cat, kind == transitionFix, indexArg)
	if err != nil {
		colorError.Printf("❌ %v\n", err)
		return
	}
	if kind == transitionJunkize {
		sel = keepTagged(sel)
	}
	if len(sel.Songs) == 0 {
		colorWarning.Println("⚠️  No matching songs in", scope)
		return
	}

	var recognizer tagging.Recognizer
	if kind == transitionFix {
		recognizer = shazam.New(s.cfg.ShazamEndpoint, nil)
	}
	machine := tagging.NewMachine(recognizer, s.cfg.ShazamThreshold, s.logger)

	ctx, cancel := commandContext()
	defer cancel()

	done, failed := 0, 0
	for i := range sel.Songs {
		if ctx.Err() != nil {
			colorWarning.Println("⚠️  Interrupted")
			break
		}
		song := &sel.Songs[i]
		if promptEach {
			switch askConfirm(fmt.Sprintf("%s %q?", transitionVerb(kind), song.DisplayName())) {
			case answerNo:
				continue
			case answerAbort:
				colorWarning.Println("⚠️  Aborted")
				return
			}
		}
		if err := applyTransition(ctx, machine, kind, song); err != nil {
			failed++
			colorError.Printf("❌ %s: %v\n", song.DisplayName(), err)
			s.logger.Printf("%s failed for %s: %v", transitionVerb(kind), song.VideoID, err)
			continue
		}
		done++
	}
	colorSuccess.Printf("✅ %d song(s) processed, %d failed\n", done, failed)
}

func applyTransition(ctx context.Context, machine *tagging.Machine, kind transition, song *catalog.Song) error {
	switch kind {
	case transitionFix:
		outcome, err := machine.Recognize(ctx, song)
		if err != nil {
			return err
		}
		if outcome.State == catalog.StateJunk {
			colorWarning.Printf("🗑  %s stays junk (%s)\n", song.DisplayName(), outcome.Reason)
		} else {
			colorSuccess.Printf("✅ %s (match %d%%)\n", song.DisplayName(), outcome.Confidence)
		}
		return nil
	case transitionJunkize:
		if err := machine.Junkize(song); err != nil {
			return err
		}
		colorWarning.Printf("🗑  %s\n", song.DisplayName())
		return nil
	default:
		if err := machine.Untag(song); err != nil {
			return err
		}
		colorWarning.Printf("🗑  %s\n", song.DisplayName())
		return nil
	}
}

func transitionVerb(kind transition) string {
	switch kind {
	case transitionFix:
		return "Recognize"
	case transitionJunkize:
		return "Junkize"
	default:
		return "Untag"
	}
}

func keepTagged(sel catalog.Selection) catalog.Selection {
	var out catalog.Selection
	for i, song := range sel.Songs {
		if song.State == catalog.StateTagged {
			out.Songs = append(out.Songs, song)
			out.Scores = append(out.Scores, sel.Scores[i])
		}
	}
	return out
}
