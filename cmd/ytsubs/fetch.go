package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	ytsubs "github.com/xybydy/go-ytsubs"
	"github.com/xybydy/go-ytsubs/types"
)

var textCmd = &cobra.Command{
	Use:   "text <url>",
	Short: "Print the transcript of a video as plain text",
	Example: `  ytsubs text "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  ytsubs text https://youtu.be/dQw4w9WgXcQ --lang en`,
	Args: cobra.ExactArgs(1),
	RunE: textRun,
}

var langsCmd = &cobra.Command{
	Use:   "langs <url>",
	Short: "Print the available transcript languages of a video as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  langsRun,
}

func textRun(cmd *cobra.Command, args []string) error {
	videoID := ytsubs.ExtractVideoID(args[0])

	text, err := newFetcher().FetchText(cmd.Context(), videoID, cfg.DefaultLang)
	if err != nil {
		return cliError(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func langsRun(cmd *cobra.Command, args []string) error {
	videoID := ytsubs.ExtractVideoID(args[0])

	languages, err := newFetcher().ListLanguages(cmd.Context(), videoID)
	if err != nil {
		return cliError(err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(types.InfoResponse{
		VideoID:            videoID,
		AvailableLanguages: languages,
	})
}

// cliError returns the localized message of a fetch error, including upstream details.
func cliError(err error) error {
	var fe *ytsubs.FetchError
	if errors.As(err, &fe) {
		return errors.New(fe.Detail(true))
	}
	return err
}
