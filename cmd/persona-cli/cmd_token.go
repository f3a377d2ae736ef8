package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"persona-chat/internal/infrastructure/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a development token with the shared HS256 secret",
	Long: `Sign a short lived token the API accepts when AUTH_JWT_SECRET is configured.
Only useful against local deployments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, _ := cmd.Flags().GetString("secret")
		if secret == "" {
			secret = os.Getenv("AUTH_JWT_SECRET")
		}
		subject, _ := cmd.Flags().GetString("subject")
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := auth.IssueHS256(secret, auth.TokenRequest{
			Subject:  subject,
			Email:    email,
			Name:     name,
			Issuer:   os.Getenv("AUTH_ISSUER"),
			Audience: os.Getenv("AUTH_AUDIENCE"),
			TTL:      ttl,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("secret", "", "HS256 secret (defaults to AUTH_JWT_SECRET)")
	tokenCmd.Flags().String("subject", "dev-user", "Token subject")
	tokenCmd.Flags().String("email", "", "Email claim")
	tokenCmd.Flags().String("name", "", "Name claim")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
