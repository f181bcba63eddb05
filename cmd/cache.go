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

	"github.com/spf13/cobra"

	"github.com/valpere/smarttranslate/internal/store"
)

var cacheDBPath string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent gloss cache",
	Long: `Inspect and clear the SQLite gloss cache used when glossary.cache is
"sqlite". The memory cache lives only as long as the server process and
expires through glossary.memory_ttl; the Redis cache expires through
glossary.redis_ttl.`,
}

func openCacheDB() (*store.Store, error) {
	path := cacheDBPath
	if path == "" {
		path = cfg.Store.SQLitePath
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show gloss cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openCacheDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.GlossCache().Len(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}
		fmt.Printf("Cached glosses: %d\n", n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached glosses",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openCacheDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.GlossCache().Clear(context.Background())
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Printf("Cleared %d entries from the gloss cache.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.PersistentFlags().StringVar(&cacheDBPath, "db", "", "Database path (default store.sqlite_path)")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
