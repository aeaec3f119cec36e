package cmd

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rulegate/rulegate/internal/core/auth"
	"github.com/rulegate/rulegate/internal/core/config"
	"github.com/rulegate/rulegate/internal/core/db"
	"github.com/rulegate/rulegate/internal/types"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate an API key for a client",
	Long:  `Generates a new API key, stores its HMAC hash, and prints the key once. The plaintext key is not recoverable afterwards.`,
	RunE:  runAPIKeyCreate,
}

var apikeyNewSecretCmd = &cobra.Command{
	Use:   "newsecret",
	Short: "Generate a fresh HMAC secret for RG_HMAC_SECRET",
	RunE:  runAPIKeyNewSecret,
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke <api-key-id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runAPIKeyRevoke,
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeyCreateCmd)
	apikeyCmd.AddCommand(apikeyNewSecretCmd)
	apikeyCmd.AddCommand(apikeyRevokeCmd)
	apikeyCreateCmd.Flags().String("client-id", "", "client identifier the key belongs to")
	apikeyCreateCmd.Flags().String("secret-id", "", "HMAC secret to sign with (defaults to the only configured secret)")
	_ = apikeyCreateCmd.MarkFlagRequired("client-id")
}

func runAPIKeyCreate(cmd *cobra.Command, args []string) error {
	clientID, _ := cmd.Flags().GetString("client-id")
	secretID, _ := cmd.Flags().GetString("secret-id")

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set RG_HMAC_SECRET environment variable)")
	}

	if secretID == "" {
		if len(secrets) > 1 {
			return fmt.Errorf("multiple HMAC secrets configured, pick one with --secret-id")
		}
		for id := range secrets {
			secretID = id
		}
	}
	secret, ok := secrets[secretID]
	if !ok {
		return fmt.Errorf("secret_id %q not found in environment", secretID)
	}

	queries, err := openQueries()
	if err != nil {
		return err
	}

	randomData := make([]byte, 32)
	if _, err := rand.Read(randomData); err != nil {
		return fmt.Errorf("failed to generate key material: %w", err)
	}

	apiKey := auth.FormatAPIKey(secretID, hex.EncodeToString(randomData))
	keyHash := auth.ComputeHMAC(secret, apiKey)
	keyID := types.NewAPIKeyID()

	if _, err := queries.Exec("insert-api-key", string(keyID), clientID, keyHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Printf("api_key_id: %s\n", keyID)
	fmt.Printf("client_id:  %s\n", clientID)
	fmt.Printf("api_key:    %s\n", apiKey)
	return nil
}

func runAPIKeyNewSecret(cmd *cobra.Command, args []string) error {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}
	fmt.Printf("RG_HMAC_SECRET=%s:%s\n", types.NewSecretID(), base64.StdEncoding.EncodeToString(secret))
	return nil
}

func runAPIKeyRevoke(cmd *cobra.Command, args []string) error {
	keyID, err := types.ParseAPIKeyID(args[0])
	if err != nil {
		return fmt.Errorf("invalid api-key-id: %w", err)
	}

	queries, err := openQueries()
	if err != nil {
		return err
	}

	res, err := queries.Exec("revoke-api-key", time.Now().UTC(), string(keyID))
	if err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no API key with id %s", keyID)
	}

	fmt.Printf("revoked %s (issued %s)\n", keyID, types.APIKeyIDTime(keyID).UTC().Format(time.RFC3339))
	return nil
}

// openQueries opens the database from the persistent --db-url flag and loads
// the named queries. The caller owns no cleanup; the process exits after one
// command.
func openQueries() (*db.Queries, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return queries, nil
}
