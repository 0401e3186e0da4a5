package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata",
		Short: "Print the campaign metadata as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := loadCampaign(cmd)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(c.Metadata.Clone())
		},
	}
}
