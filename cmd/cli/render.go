package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/axellelanca/shortlinkctl/cmd"
	"github.com/axellelanca/shortlinkctl/internal/form"
	"github.com/axellelanca/shortlinkctl/internal/models"
)

// terminalNotifier prints notifications in colour: successes to out, errors to errOut.
type terminalNotifier struct {
	out    io.Writer
	errOut io.Writer
}

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	changeColor  = color.New(color.FgYellow)
)

func (n terminalNotifier) Success(msg string) {
	successColor.Fprintln(n.out, msg)
}

func (n terminalNotifier) Error(msg string) {
	errorColor.Fprintln(n.errOut, msg)
}

// newNotifier returns the notifier for the current output mode. JSON output
// keeps stdout clean, so successes are dropped there.
func newNotifier(c interface {
	OutOrStdout() io.Writer
	ErrOrStderr() io.Writer
}) form.Notifier {
	out := c.OutOrStdout()
	if cmd.JSONOutput() {
		out = io.Discard
	}
	return terminalNotifier{out: out, errOut: c.ErrOrStderr()}
}

// promptConfirmer asks on out and reads a y/yes answer from in.
func promptConfirmer(in io.Reader, out io.Writer) form.Confirmer {
	reader := bufio.NewReader(in)
	return form.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		answer, err := reader.ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid link id %q", arg)
	}
	return id, nil
}

func printLink(w io.Writer, link *models.ShortLink) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", link.ID)
	fmt.Fprintf(tw, "Short URL:\t%s\n", link.ShortURL)
	fmt.Fprintf(tw, "Original URL:\t%s\n", link.OriginalURL)
	if link.Title != "" {
		fmt.Fprintf(tw, "Title:\t%s\n", link.Title)
	}
	if link.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", link.Description)
	}
	fmt.Fprintf(tw, "Clicks:\t%s (%s unique)\n", humanize.Comma(link.Clicks), humanize.Comma(link.UniqueClicks))
	fmt.Fprintf(tw, "Created:\t%s\n", formatTime(link.CreatedAt))
	if link.LastAccessed != nil {
		fmt.Fprintf(tw, "Last accessed:\t%s\n", formatTime(*link.LastAccessed))
	}
	if link.ExpiresAt != nil {
		status := "expires"
		if link.IsExpired {
			status = "expired"
		}
		fmt.Fprintf(tw, "Expiry:\t%s %s\n", status, formatTime(*link.ExpiresAt))
	}
	tw.Flush()
}

func printLinkTable(w io.Writer, links []models.ShortLink) {
	if len(links) == 0 {
		fmt.Fprintln(w, "No URLs found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSHORT URL\tORIGINAL URL\tCLICKS\tCREATED")
	for _, l := range links {
		short := l.ShortURL
		if l.IsExpired {
			short += " (expired)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", l.ID, short, truncate(l.OriginalURL, 60), humanize.Comma(l.Clicks), humanize.Time(l.CreatedAt))
	}
	tw.Flush()
}

func printLinkStats(w io.Writer, id int64, stats *models.LinkStats) {
	fmt.Fprintf(w, "Statistics for link %d\n", id)
	fmt.Fprintf(w, "Total clicks:  %s\n", humanize.Comma(stats.TotalClicks))
	fmt.Fprintf(w, "Unique clicks: %s\n", humanize.Comma(stats.UniqueClicks))
	if stats.LastAccessed != nil {
		fmt.Fprintf(w, "Last accessed: %s\n", formatTime(*stats.LastAccessed))
	}

	if len(stats.ClicksByDate) > 0 {
		fmt.Fprintln(w, "\nClicks by date (last 30 days):")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, d := range stats.ClicksByDate {
			fmt.Fprintf(tw, "  %s\t%s\n", d.Date, humanize.Comma(d.Count))
		}
		tw.Flush()
	}
	printBreakdown(w, "Devices", stats.ClicksByDevice)
	printBreakdown(w, "Browsers", stats.ClicksByBrowser)
	printBreakdown(w, "Countries", stats.ClicksByCountry)

	if len(stats.TopReferrers) > 0 {
		fmt.Fprintln(w, "\nTop referrers:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, r := range stats.TopReferrers {
			fmt.Fprintf(tw, "  %s\t%s\n", r.Referer, humanize.Comma(r.Count))
		}
		tw.Flush()
	}
}

// printBreakdown prints counts highest first, ties by name.
func printBreakdown(w io.Writer, title string, counts map[string]int64) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Fprintf(w, "\n%s:\n", title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "  %s\t%s\n", k, humanize.Comma(counts[k]))
	}
	tw.Flush()
}

func printDashboard(w io.Writer, d *form.Dashboard) {
	s := d.Stats
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total URLs:\t%s\n", humanize.Comma(s.TotalURLs))
	fmt.Fprintf(tw, "Total clicks:\t%s\n", humanize.Comma(s.TotalClicks))
	fmt.Fprintf(tw, "Unique visitors:\t%s\n", humanize.Comma(s.TotalUniqueVisitors))
	fmt.Fprintf(tw, "Clicks today:\t%s\n", humanize.Comma(s.ClicksToday))
	fmt.Fprintf(tw, "Clicks this week:\t%s\n", humanize.Comma(s.ClicksThisWeek))
	tw.Flush()

	if len(s.TopURLs) > 0 {
		fmt.Fprintln(w, "\nTop URLs:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for i, t := range s.TopURLs {
			label := t.OriginalURL
			if t.Title != "" {
				label = t.Title
			}
			fmt.Fprintf(tw, "  %d.\t%s\t%s\t%s clicks\n", i+1, t.ShortCode, truncate(label, 50), humanize.Comma(t.Clicks))
		}
		tw.Flush()
	}

	if d.Trends != nil {
		fmt.Fprintln(w)
		printTrends(w, d.Trends)
	}
}

func printTrends(w io.Writer, t *models.Trends) {
	fmt.Fprintf(w, "Click trends (last %d days):\n", t.PeriodDays)
	if len(t.Trends) == 0 {
		fmt.Fprintln(w, "  no clicks")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  DATE\tCLICKS\tUNIQUE")
	for _, p := range t.Trends {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Date, humanize.Comma(p.TotalClicks), humanize.Comma(p.TotalUnique))
	}
	tw.Flush()
}

func formatTime(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Local().Format("2006-01-02 15:04:05"), humanize.Time(t))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
