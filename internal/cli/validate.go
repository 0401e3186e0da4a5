package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a campaign file and report shadowed patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, engine, err := loadCampaign(cmd)
			if err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, o := range engine.Overlaps() {
				fmt.Fprintf(out, "warning: %s\n", o)
			}
			fmt.Fprintf(out, "%s: %d rules, %d topics, %d overlaps\n",
				c.Metadata.CampaignName, engine.RuleCount(), len(engine.Topics()), len(engine.Overlaps()))
			return nil
		},
	}
}
