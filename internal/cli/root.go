// Package cli implements the campaignpulse command line: offline
// classification and campaign file checks.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"campaignpulse/internal/campaign"
	"campaignpulse/internal/classifier"
	"campaignpulse/internal/config"
	"campaignpulse/internal/logger"
)

// NewRootCmd builds a fresh command tree so flags never leak between runs.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "campaignpulse",
		Short:         "Classify social media comments by campaign topic",
		Long:          "campaignpulse classifies marketing campaign comments into topics using the campaign's ordered rule table.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("campaign", "", "Path to a campaign YAML file (defaults to the embedded campaign)")
	root.PersistentFlags().Bool("verbose", false, "Log engine construction details to stderr")

	root.AddCommand(newClassifyCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newMetadataCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

// loadCampaign resolves --campaign and builds its engine.
func loadCampaign(cmd *cobra.Command) (*campaign.Campaign, *classifier.Engine, error) {
	path, _ := cmd.Flags().GetString("campaign")

	c, err := campaign.LoadOrDefault(path)
	if err != nil {
		return nil, nil, err
	}

	engine, err := c.Engine(classifier.WithLogger(cmdLogger(cmd)))
	if err != nil {
		return nil, nil, err
	}
	return c, engine, nil
}

func cmdLogger(cmd *cobra.Command) *zap.Logger {
	if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
		return zap.NewNop()
	}
	l, err := logger.New(config.LogConfig{Level: "debug", Development: true})
	if err != nil {
		return zap.NewNop()
	}
	return l
}
