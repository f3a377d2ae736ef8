package main

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"persona-chat/internal/client/apiclient"
	"persona-chat/internal/config"
)

var version = "dev"

// cliConfig is read from the environment; flags take precedence.
type cliConfig struct {
	APIURL          string        `env:"PERSONA_API_URL" envDefault:"http://localhost:8080"`
	Token           string        `env:"PERSONA_API_TOKEN"`
	InvalidateDelay time.Duration `env:"TITLE_INVALIDATE_DELAY" envDefault:"2s"`
	LogLevel        string        `env:"PERSONA_CLI_LOG_LEVEL" envDefault:"warn"`
}

var (
	cliCfg    cliConfig
	apiURL    string
	authToken string
	log       zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "persona-cli",
	Short: "Chat with Persona characters from the terminal",
	Long: `persona-cli talks to a running Persona Chat API.

The API address and bearer token come from PERSONA_API_URL and
PERSONA_API_TOKEN (or a .env file), or from the --api-url and --token flags.

Examples:
  persona-cli characters
  persona-cli chat --character nova
  persona-cli chat --character luna --conversation 6f1c... --model google/gemini-2.0-flash-001
  persona-cli usage --stats
  persona-cli token --secret $AUTH_JWT_SECRET --subject dev-user`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnvFiles()
		if err := env.Parse(&cliCfg); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
		if !cmd.Flags().Changed("api-url") {
			apiURL = cliCfg.APIURL
		}
		if !cmd.Flags().Changed("token") {
			authToken = cliCfg.Token
		}

		level, err := zerolog.ParseLevel(cliCfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid PERSONA_CLI_LOG_LEVEL: %w", err)
		}
		zerolog.SetGlobalLevel(level)
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
		return nil
	},
}

func newAPIClient() (*apiclient.Client, error) {
	if authToken == "" {
		return nil, fmt.Errorf("no token: set PERSONA_API_TOKEN or pass --token")
	}
	return apiclient.New(apiURL, authToken), nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(charactersCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(tokenCmd)

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "Persona Chat API base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Bearer token")
}
