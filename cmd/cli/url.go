package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clustrmaps-go-crawler/internal/models"
	"clustrmaps-go-crawler/internal/pipeline"
	"clustrmaps-go-crawler/internal/states"
)

func newURLCmd() *cobra.Command {
	var (
		id   models.Identity
		site string
	)
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the listing URL and output key of one person",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id.State, _ = states.Normalize(id.State)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, pipeline.BuildURL(site, id))
			fmt.Fprintln(out, pipeline.MainTableName(id))
			return nil
		},
	}
	cmd.Flags().StringVar(&id.FirstName, "first", "", "first name (required)")
	cmd.Flags().StringVar(&id.LastName, "last", "", "last name (required)")
	cmd.Flags().StringVar(&id.State, "state", "", "state code or name")
	cmd.Flags().StringVar(&site, "site", pipeline.DefaultSite, "people-search host")
	if err := cmd.MarkFlagRequired("first"); err != nil {
		panic(fmt.Sprintf("failed to mark first flag as required: %v", err))
	}
	if err := cmd.MarkFlagRequired("last"); err != nil {
		panic(fmt.Sprintf("failed to mark last flag as required: %v", err))
	}
	return cmd
}
