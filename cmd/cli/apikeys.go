package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/anstrom/netsentinel/internal/auth"
)

var (
	apiKeyName   string
	apiKeyOutput string
)

// apiKeysCmd represents the apikeys command group
var apiKeysCmd = &cobra.Command{
	Use:     "apikeys",
	Aliases: []string{"apikey", "keys"},
	Short:   "Generate API keys for client authentication",
	Long: `Generate API keys for the HTTP API.

Keys are never stored in plain text. Put the printed hash into
api.api_keys in the config file, enable api.auth_enabled and hand the key
to the client, which sends it as X-API-Key or as a Bearer token.

Examples:
  # Create a key for a dashboard
  netsentinel apikeys generate --name "Dashboard"

  # Hash an existing key
  netsentinel apikeys hash ns_abc123...`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

var apiKeysGenerateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"create", "new"},
	Short:   "Generate a new API key and its hash",
	RunE:    runAPIKeysGenerate,
}

var apiKeysHashCmd = &cobra.Command{
	Use:   "hash <key>",
	Short: "Print the hash of an existing API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runAPIKeysHash,
}

func init() {
	rootCmd.AddCommand(apiKeysCmd)
	apiKeysCmd.AddCommand(apiKeysGenerateCmd, apiKeysHashCmd)

	apiKeysGenerateCmd.Flags().StringVar(&apiKeyName, "name", "", "human-readable name for the key")
	apiKeysGenerateCmd.Flags().StringVarP(&apiKeyOutput, "output", "o", outputTable, "output format (table, json)")
	_ = apiKeysGenerateCmd.MarkFlagRequired("name")
}

func runAPIKeysGenerate(cmd *cobra.Command, _ []string) error {
	if err := validateOutput(apiKeyOutput); err != nil {
		return err
	}

	key, err := auth.GenerateAPIKey(apiKeyName)
	if err != nil {
		return err
	}

	if apiKeyOutput == outputJSON {
		return writeJSON(cmd.OutOrStdout(), key)
	}
	return displayGeneratedKey(cmd.OutOrStdout(), key)
}

func displayGeneratedKey(w io.Writer, key *auth.GeneratedAPIKey) error {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")
	rows := [][]string{
		{"Name", key.Name},
		{"Key", key.Key},
		{"Prefix", key.KeyPrefix},
		{"Hash", key.Hash},
		{"Created", key.CreatedAt.Local().Format(timeLayout)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nThe key is shown only once. Add the hash to api.api_keys:")
	fmt.Fprintf(w, "  api_keys:\n    - %q\n", key.Hash)
	return nil
}

func runAPIKeysHash(cmd *cobra.Command, args []string) error {
	apiKey := strings.TrimSpace(args[0])
	if !auth.IsValidAPIKeyFormat(apiKey) {
		return fmt.Errorf("invalid API key format")
	}

	hash, err := auth.HashAPIKey(apiKey)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
