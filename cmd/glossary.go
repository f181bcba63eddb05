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
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/smarttranslate/internal/glossary"
)

var (
	glossText  string
	glossInput string
	glossFrom  string
	glossTo    string
)

var glossCmd = &cobra.Command{
	Use:   "gloss [token...]",
	Short: "Look up word-by-word glosses",
	Long: `Gloss individual words, the way the reader shows a meaning on hover.

Tokens are taken from the arguments, or split out of --text/--input.
Digit-only tokens are skipped and repeated tokens are looked up once.
Glosses are cached in the configured glossary cache (memory, redis or sqlite).

  smarttranslate gloss --from hi --text "पानी और घर"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens := args
		if len(tokens) == 0 {
			text, err := readInput(glossText, glossInput)
			if err != nil {
				return err
			}
			tokens = glossary.Tokenize(text)
		}

		ctx := context.Background()

		rt, err := newRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		if glossFrom == "auto" {
			glossFrom = rt.langDetector().Resolve(glossFrom, strings.Join(tokens, " "), glossFrom)
		}

		svc, err := rt.glossary(ctx, *cfg)
		if err != nil {
			return err
		}

		glosses, err := svc.Gloss(ctx, tokens, glossFrom, glossTo)
		if err != nil {
			return fmt.Errorf("gloss lookup failed: %w", err)
		}

		if len(glosses) == 0 {
			fmt.Println("No glosses found.")
			return nil
		}

		keys := make([]string, 0, len(glosses))
		for k := range glosses {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TOKEN\tGLOSS")
		for _, k := range keys {
			fmt.Fprintf(w, "%s\t%s\n", k, glosses[k])
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(glossCmd)

	glossCmd.Flags().StringVar(&glossText, "text", "", "Text to split into tokens")
	glossCmd.Flags().StringVarP(&glossInput, "input", "i", "", "File to split into tokens")
	glossCmd.Flags().StringVarP(&glossFrom, "from", "s", "auto", "Source language of the tokens")
	glossCmd.Flags().StringVarP(&glossTo, "to", "t", glossary.DefaultTargetLang, "Language of the glosses")
}
