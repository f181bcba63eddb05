/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/smarttranslate/internal"
	"github.com/valpere/smarttranslate/internal/history"
	"github.com/valpere/smarttranslate/internal/pipeline"
)

var (
	inputText  string
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string
	mode       string
	saveResult bool
	saveUser   string
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate text once",
	Long: `Translate text with the configured provider.

The text comes from --text or --input. Friendly mode rewrites the English
source in plainer words before translating:

  smarttranslate translate --text "Kindly utilize the dashboard" --to hi --mode friendly

With --save and --user the result is added to that user's history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(inputText, inputFile)
		if err != nil {
			return err
		}
		if outputFile != "" && outputFile == inputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}
		if saveResult && saveUser == "" {
			return fmt.Errorf("--save requires --user")
		}

		ctx := context.Background()

		rt, err := newRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		if sourceLang == "auto" {
			if detected, ok := rt.langDetector().DetectISO(text); ok {
				sourceLang = detected
				fmt.Fprintf(os.Stderr, "Detected source language: %s\n", sourceLang)
			}
		}

		res, err := rt.pipeline(*cfg, history.NewService(rt.repo)).Translate(ctx, pipeline.Request{
			Text:       text,
			SourceLang: sourceLang,
			TargetLang: targetLang,
			Mode:       internal.ParseMode(mode),
			UserID:     saveUser,
			Save:       saveResult,
		})
		if err != nil {
			return err
		}

		if outputFile == "" {
			fmt.Println(res.TranslatedText)
		} else {
			if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(outputFile, []byte(res.TranslatedText), 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Successfully translated to %s\n", targetLang)
		}

		if saveResult && res.Saved == nil {
			fmt.Fprintln(os.Stderr, "Warning: translation was not saved to history")
		} else if res.Saved != nil {
			fmt.Fprintf(os.Stderr, "Saved to history: %s\n", res.Saved.ID)
		}
		fmt.Fprintf(os.Stderr, "Service: %s (%s)\n", res.ServiceName, res.Latency.Round(time.Millisecond))
		return nil
	},
}

// readInput returns text, or the contents of file when text is empty.
func readInput(text, file string) (string, error) {
	if text != "" && file != "" {
		return "", fmt.Errorf("use either --text or --input, not both")
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text to translate: pass --text or --input")
	}
	return text, nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVar(&inputText, "text", "", "Text to translate")
	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default stdout)")
	translateCmd.Flags().StringVarP(&sourceLang, "from", "s", "auto", "Source language code")
	translateCmd.Flags().StringVarP(&targetLang, "to", "t", "", "Target language code (required)")
	translateCmd.Flags().StringVarP(&mode, "mode", "m", "formal", "Mode: friendly or formal")
	translateCmd.Flags().BoolVar(&saveResult, "save", false, "Save the result to history")
	translateCmd.Flags().StringVar(&saveUser, "user", "", "User id that owns the saved record")

	translateCmd.Flags().String("provider", "", "Translation provider: gtx, google or mymemory")
	bindFlag(translateCmd, "translate.provider", "provider")

	translateCmd.MarkFlagRequired("to")
}
