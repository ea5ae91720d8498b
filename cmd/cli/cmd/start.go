package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ledgersync/pkg/api"
)

var (
	startUserID   string
	startTenantID string
	startJobType  string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a scheduled ingestion job",
	Long: `Start a recurring ingestion job for a user's tenant. Starting a job
that is already running is a no-op and reports the existing job.`,
	Run: func(cmd *cobra.Command, args []string) {
		token := viper.GetString("token")
		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the LEDGERSYNC_TOKEN environment variable")
			return
		}

		client := NewAPIClient(viper.GetString("api_url"), token)
		resp, err := client.StartJob(api.StartJobRequest{
			UserID:   startUserID,
			TenantID: startTenantID,
			JobType:  startJobType,
		})
		if err != nil {
			cmd.Printf("Failed to start job: %v\n", err)
			return
		}

		if resp.AlreadyRunning {
			cmd.Printf("Job already running: %s\n", resp.JobID)
		} else {
			cmd.Printf("Job started: %s\n", resp.JobID)
		}
		cmd.Printf("Runs %s\n", resp.Schedule)
		if resp.NextRun != nil {
			cmd.Printf("Next run: %s\n", resp.NextRun.Format("Mon, 02 Jan 2006 15:04:05 MST"))
		}
	},
}

func init() {
	startCmd.Flags().StringVar(&startUserID, "user", "", "User ID owning the tenant (required)")
	startCmd.Flags().StringVar(&startTenantID, "tenant", "", "Tenant ID to ingest (required)")
	startCmd.Flags().StringVar(&startJobType, "type", "invoice", "Job type: invoice or statement")
	startCmd.MarkFlagRequired("user")
	startCmd.MarkFlagRequired("tenant")

	rootCmd.AddCommand(startCmd)
}
