package cmd

import (
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List active scheduled jobs",
	Long:  `List every active ingestion job across all users and tenants.`,
	Run: func(cmd *cobra.Command, args []string) {
		token := viper.GetString("token")
		if token == "" {
			cmd.Println("API token not found. Please set it using the --token flag or the LEDGERSYNC_TOKEN environment variable")
			return
		}

		client := NewAPIClient(viper.GetString("api_url"), token)
		resp, err := client.ListJobs()
		if err != nil {
			cmd.Printf("Failed to list jobs: %v\n", err)
			return
		}

		if len(resp.Jobs) == 0 {
			cmd.Println("No active jobs")
			return
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer w.Flush()

		writeRow(w, "JOB ID", "USER", "TENANT", "TYPE", "CREATED")
		for _, job := range resp.Jobs {
			writeRow(w, job.ID, job.UserID, job.TenantID, job.JobType, job.CreatedAt.Format("2006-01-02 15:04"))
		}
	},
}

func writeRow(w *tabwriter.Writer, cols ...string) {
	for i, col := range cols {
		if i > 0 {
			w.Write([]byte("\t"))
		}
		w.Write([]byte(col))
	}
	w.Write([]byte("\n"))
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}
