package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var stopCmd = &cobra.Command{
	Use:   "stop [job_id]",
	Short: "Stop a scheduled ingestion job",
	Long:  `Stop a running ingestion job. The job record is kept for auditing; only the recurring trigger is removed.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		token := viper.GetString("token")
		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the LEDGERSYNC_TOKEN environment variable")
			return
		}

		client := NewAPIClient(viper.GetString("api_url"), token)
		resp, err := client.StopJob(args[0])
		if err != nil {
			cmd.Printf("Failed to stop job: %v\n", err)
			return
		}

		cmd.Printf("Job stopped: %s (%s)\n", resp.JobID, resp.JobType)
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
