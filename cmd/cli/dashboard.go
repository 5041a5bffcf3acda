package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/axellelanca/shortlinkctl/cmd"
	"github.com/axellelanca/shortlinkctl/internal/form"
	"github.com/axellelanca/shortlinkctl/internal/models"
	"github.com/axellelanca/shortlinkctl/internal/monitor"
)

var (
	dashboardTrendDays int
	dashboardWatch     bool
	trendsDays         int
)

// DashboardCmd represents the 'dashboard' command
var DashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show global analytics",
	Long: `Shows the totals and top URLs of the analytics dashboard.

With --trends-days the daily click trend is fetched alongside. With --watch the
totals are polled every dashboard.watch_interval_seconds and changes are printed
until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

// TrendsCmd represents the 'trends' command
var TrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show daily click trends",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		api, err := cmd.NewClient()
		if err != nil {
			return err
		}
		trends, err := api.GetTrends(c.Context(), trendsDays)
		if err != nil {
			return err
		}
		if cmd.JSONOutput() {
			return printJSON(c.OutOrStdout(), trends)
		}
		printTrends(c.OutOrStdout(), trends)
		return nil
	},
}

// HealthCmd represents the 'health' command
var HealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the API is reachable",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		api, err := cmd.NewClient()
		if err != nil {
			return err
		}
		status, err := api.Health(c.Context())
		if err != nil {
			return err
		}
		if cmd.JSONOutput() {
			return printJSON(c.OutOrStdout(), status)
		}
		fmt.Fprintf(c.OutOrStdout(), "%s: %s (%s)\n", api.BaseURL(), status.Status, status.Timestamp)
		return nil
	},
}

func init() {
	DashboardCmd.Flags().IntVar(&dashboardTrendDays, "trends-days", 0, "also show the click trend over this many days")
	DashboardCmd.Flags().BoolVarP(&dashboardWatch, "watch", "w", false, "keep polling and print changes")
	TrendsCmd.Flags().IntVar(&trendsDays, "days", 30, "number of days to cover")

	cmd.RootCmd.AddCommand(DashboardCmd, TrendsCmd, HealthCmd)
}

func runDashboard(c *cobra.Command, _ []string) error {
	api, err := cmd.NewClient()
	if err != nil {
		return err
	}

	view := form.NewDashboardView(api, newNotifier(c))
	var d *form.Dashboard
	if c.Flags().Changed("trends-days") {
		d, err = view.LoadWithTrends(c.Context(), dashboardTrendDays)
	} else {
		d, err = view.Load(c.Context())
	}
	if err != nil {
		cmd.Logger.Debug("dashboard load failed", zap.Error(err))
		return cmd.Reported(err)
	}

	if cmd.JSONOutput() {
		if err := printJSON(c.OutOrStdout(), d); err != nil {
			return err
		}
	} else {
		printDashboard(c.OutOrStdout(), d)
	}
	if !dashboardWatch {
		return nil
	}

	out := c.OutOrStdout()
	m := monitor.NewDashboardMonitor(api, cmd.Cfg.WatchInterval(), cmd.Logger, func(stats *models.DashboardStats, changes []monitor.Change) {
		if cmd.JSONOutput() {
			if len(changes) > 0 {
				_ = printJSON(out, stats)
			}
			return
		}
		for _, ch := range changes {
			changeColor.Fprintf(out, "[%s] %s: %d -> %d (%+d)\n",
				time.Now().Format("15:04:05"), ch.Counter, ch.Previous, ch.Current, ch.Delta())
		}
	})
	if !cmd.JSONOutput() {
		fmt.Fprintf(out, "\nWatching every %s, press Ctrl+C to stop.\n", cmd.Cfg.WatchInterval())
	}
	m.Start(c.Context())
	return nil
}
