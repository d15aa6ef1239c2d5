package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var videosCmd = &cobra.Command{
	Use:   "videos [index]",
	Short: "Open the YouTube page of selected songs in the browser.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := openSession()
		if err != nil {
			colorError.Printf("❌ %v\n", err)
			return
		}
		defer s.Close()

		cat, err := s.scan()
		if err != nil {
			colorError.Printf("❌ %v\n", err)
			return
		}
		indexArg := ""
		if len(args) == 1 {
			indexArg = args[0]
		}
		sel, scope, err := s.selectSongs(cat, false, indexArg)
		if err != nil {
			colorError.Printf("❌ %v\n", err)
			return
		}
		if len(sel.Songs) == 0 {
			colorWarning.Println("⚠️  No matching songs in", scope)
			return
		}

		for _, song := range sel.Songs {
			colorInfo.Printf("🎬 %s\n   %s\n", song.DisplayName(), song.WatchURL())
			if len(sel.Songs) > 1 {
				switch askConfirm(fmt.Sprintf("Open %q in browser?", song.DisplayName())) {
				case answerNo:
					continue
				case answerAbort:
					return
				}
			}
			if err := openBrowser(song.WatchURL()); err != nil {
				colorError.Printf("❌ %v\n", err)
			}
		}
	},
}
