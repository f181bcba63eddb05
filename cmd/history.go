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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/smarttranslate/internal/history"
)

var historyUser string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage a user's saved translations",
	Long:  `List, delete and clear the saved translations of one user.`,
}

// withHistory opens the configured store and hands a history service to fn.
func withHistory(fn func(ctx context.Context, svc *history.Service) error) error {
	ctx := context.Background()
	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, history.NewService(rt.repo))
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved translations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(ctx context.Context, svc *history.Service) error {
			items, err := svc.List(ctx, historyUser)
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}
			if len(items) == 0 {
				fmt.Println("No saved translations.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLANG\tCREATED\tORIGINAL\tTRANSLATED")
			for _, it := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					it.ID, it.Lang, it.CreatedAt.Format("2006-01-02 15:04"),
					snippet(it.Original, 40), snippet(it.Translated, 40))
			}
			return w.Flush()
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one saved translation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(ctx context.Context, svc *history.Service) error {
			if err := svc.DeleteOne(ctx, historyUser, args[0]); err != nil {
				return fmt.Errorf("failed to delete entry: %w", err)
			}
			fmt.Printf("Deleted entry: %s\n", args[0])
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved translation of the user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(ctx context.Context, svc *history.Service) error {
			n, err := svc.DeleteAll(ctx, historyUser)
			if err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Printf("Cleared %d entries.\n", n)
			return nil
		})
	},
}

// snippet shortens s to at most n runes for table output.
func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.PersistentFlags().StringVarP(&historyUser, "user", "u", "", "Owning user id (required)")
	historyCmd.MarkPersistentFlagRequired("user")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}
