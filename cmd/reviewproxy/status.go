package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wpbr/reviewproxy/internal/config"
	"github.com/wpbr/reviewproxy/internal/trustpilot"
	pkgconfig "github.com/wpbr/reviewproxy/pkg/config"
)

var errDisconnected = errors.New("trustpilot platform is unreachable")

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the Trustpilot API answers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var tp config.Trustpilot
		if err := pkgconfig.Load(&tp); err != nil {
			return err
		}
		if tp.APIKey == "" {
			return errors.New("TRUSTPILOT_API_KEY is required")
		}

		client := trustpilot.New(tp.APIKey,
			trustpilot.WithBaseURL(tp.BaseURL),
			trustpilot.WithTimeout(tp.Timeout),
		)
		status := client.PlatformStatus(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), status)
		if status != trustpilot.StatusConnected {
			return errDisconnected
		}
		return nil
	},
}
