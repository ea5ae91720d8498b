package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var revokeCmd = &cobra.Command{
	Use:   "revoke [user_id]",
	Short: "Revoke a user's stored credential",
	Long: `Delete a user's stored provider credential. Scheduled jobs for the
user keep running but skip their passes until a new credential is stored.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		token := viper.GetString("token")
		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the LEDGERSYNC_TOKEN environment variable")
			return
		}

		client := NewAPIClient(viper.GetString("api_url"), token)
		if err := client.DeleteCredential(args[0]); err != nil {
			cmd.Printf("Failed to revoke credential: %v\n", err)
			return
		}

		cmd.Printf("Credential revoked for user %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(revokeCmd)
}
