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

	"github.com/valpere/smarttranslate/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue and check bearer tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <user-id>",
	Short: "Issue a token for an existing user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rt, err := newRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		u, err := rt.repo.UserByID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to find user: %w", err)
		}

		token, err := rt.auth(*cfg).IssueToken(u.ID)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

var tokenVerifyCmd = &cobra.Command{
	Use:   "verify <token>",
	Short: "Print the user id a token belongs to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, nil).VerifyToken(args[0])
		if err != nil {
			return fmt.Errorf("invalid token: %w", err)
		}
		fmt.Println(userID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.AddCommand(tokenIssueCmd)
	tokenCmd.AddCommand(tokenVerifyCmd)
}
