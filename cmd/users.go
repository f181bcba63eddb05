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
)

var (
	userEmail    string
	userPassword string
	userName     string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts",
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an account and print its token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rt, err := newRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		u, token, err := rt.auth(*cfg).Register(ctx, userName, userEmail, userPassword)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		fmt.Printf("Created user %s (%s)\n", u.ID, u.Username)
		fmt.Printf("Token: %s\n", token)
		return nil
	},
}

var usersShowCmd = &cobra.Command{
	Use:   "show <email>",
	Short: "Show an account by e-mail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rt, err := newRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		u, err := rt.repo.UserByEmail(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to find user: %w", err)
		}
		fmt.Printf("ID:       %s\n", u.ID)
		fmt.Printf("Username: %s\n", u.Username)
		fmt.Printf("Email:    %s\n", u.Email)
		fmt.Printf("Created:  %s\n", u.CreatedAt.Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)

	usersAddCmd.Flags().StringVar(&userEmail, "email", "", "E-mail address (required)")
	usersAddCmd.Flags().StringVar(&userPassword, "password", "", "Password, at least 6 characters (required)")
	usersAddCmd.Flags().StringVar(&userName, "username", "", "Display name (default: e-mail local part)")
	usersAddCmd.MarkFlagRequired("email")
	usersAddCmd.MarkFlagRequired("password")

	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersShowCmd)
}
