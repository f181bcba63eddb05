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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/smarttranslate/internal/history"
)

var csvOutputFile string

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved translations as CSV",
	Long: `Write the user's saved translations to a CSV file, newest first.

Columns: id, lang, created_at (RFC 3339), original, translated.

Example:
  smarttranslate history export -u 4f1c... -o history.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(ctx context.Context, svc *history.Service) error {
			items, err := svc.List(ctx, historyUser)
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}

			var out io.Writer = os.Stdout
			if csvOutputFile != "" {
				f, err := os.Create(csvOutputFile)
				if err != nil {
					return fmt.Errorf("failed to create output CSV: %w", err)
				}
				defer f.Close()
				out = f
			}

			w := csv.NewWriter(out)
			if err := w.Write([]string{"id", "lang", "created_at", "original", "translated"}); err != nil {
				return fmt.Errorf("failed to write CSV: %w", err)
			}
			for _, it := range items {
				row := []string{it.ID, it.Lang, it.CreatedAt.Format(time.RFC3339), it.Original, it.Translated}
				if err := w.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV: %w", err)
				}
			}
			w.Flush()
			if err := w.Error(); err != nil {
				return fmt.Errorf("failed to write CSV: %w", err)
			}

			if csvOutputFile != "" {
				fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", len(items), csvOutputFile)
			}
			return nil
		})
	},
}

func init() {
	historyCmd.AddCommand(historyExportCmd)

	historyExportCmd.Flags().StringVarP(&csvOutputFile, "output", "o", "", "Output CSV file (default stdout)")
}
