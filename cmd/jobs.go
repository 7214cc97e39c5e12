package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/change8/BiddingAssistant/api/schemas"
	"github.com/change8/BiddingAssistant/internal/observability"
)

// newJobsCmd creates the `jobs` command group: inspect and prune the job
// records of the configured store. Useful with the postgres driver, where
// records outlive the process.
func newJobsCmd() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "List analysis job records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			jobStore, closeStore, err := buildStore(ctx, appConfig, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			jobs, err := jobStore.List(ctx)
			if err != nil {
				return err
			}
			for _, job := range jobs {
				job.Result = nil
			}
			if jobs == nil {
				jobs = []*schemas.Job{}
			}
			return printJSON(cmd.OutOrStdout(), jobs)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <job-id>",
		Short: "Delete a job record by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			jobStore, closeStore, err := buildStore(ctx, appConfig, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			deleted, err := jobStore.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("job %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %s\n", args[0])
			return nil
		},
	}

	jobsCmd.AddCommand(deleteCmd)
	return jobsCmd
}
