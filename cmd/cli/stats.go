package cli

import (
	"github.com/spf13/cobra"

	"github.com/axellelanca/shortlinkctl/cmd"
	"github.com/axellelanca/shortlinkctl/internal/client"
	"github.com/axellelanca/shortlinkctl/internal/models"
)

// StatsCmd represents the 'stats' command
var StatsCmd = &cobra.Command{
	Use:   "stats <id>",
	Short: "Get statistics for a short URL",
	Long:  `Shows click totals and the last 30 days broken down by date, device, browser, country and referrer.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

var topLimit int

// PopularCmd represents the 'popular' command
var PopularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List the most clicked short URLs",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return runTop(c, func(api *client.Client) ([]models.ShortLink, error) {
			return api.GetPopularLinks(c.Context(), topLimit)
		})
	},
}

// RecentCmd represents the 'recent' command
var RecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the newest short URLs",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return runTop(c, func(api *client.Client) ([]models.ShortLink, error) {
			return api.GetRecentLinks(c.Context(), topLimit)
		})
	},
}

func init() {
	for _, sub := range []*cobra.Command{PopularCmd, RecentCmd} {
		sub.Flags().IntVarP(&topLimit, "limit", "n", 10, "number of URLs to show")
	}
	cmd.RootCmd.AddCommand(StatsCmd, PopularCmd, RecentCmd)
}

// runStats fetches and prints the statistics of one link.
func runStats(c *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	api, err := cmd.NewClient()
	if err != nil {
		return err
	}

	stats, err := api.GetLinkStats(c.Context(), id)
	if err != nil {
		return notFoundOr(err, id)
	}
	if cmd.JSONOutput() {
		return printJSON(c.OutOrStdout(), stats)
	}
	printLinkStats(c.OutOrStdout(), id, stats)
	return nil
}

func runTop(c *cobra.Command, fetch func(api *client.Client) ([]models.ShortLink, error)) error {
	api, err := cmd.NewClient()
	if err != nil {
		return err
	}
	links, err := fetch(api)
	if err != nil {
		return err
	}
	if cmd.JSONOutput() {
		return printJSON(c.OutOrStdout(), links)
	}
	printLinkTable(c.OutOrStdout(), links)
	return nil
}
