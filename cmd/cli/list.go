package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/axellelanca/shortlinkctl/cmd"
	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
	"github.com/axellelanca/shortlinkctl/internal/form"
	"github.com/axellelanca/shortlinkctl/internal/models"
)

var (
	listSearch      string
	listOrder       string
	listPage        int
	listInteractive bool
)

// orderAliases maps friendly --order values to the API's order_by.
var orderAliases = map[string]string{
	"newest":       models.OrderNewest,
	"oldest":       models.OrderOldest,
	"most-clicks":  models.OrderMostClicks,
	"least-clicks": models.OrderFewest,
}

// ListCmd represents the 'list' command
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List short URLs",
	Long: `Lists active short URLs, 20 per page.

With --interactive the command keeps a search prompt open: type a term to
search, "d <id>" to delete, "n"/"p" for the next/previous page and "q" to quit.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	ListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "filter by original URL, short code or title")
	ListCmd.Flags().StringVar(&listOrder, "order", "newest", "newest, oldest, most-clicks or least-clicks")
	ListCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	ListCmd.Flags().BoolVarP(&listInteractive, "interactive", "i", false, "keep a search and delete prompt open")

	cmd.RootCmd.AddCommand(ListCmd)
}

func resolveOrder(value string) (string, error) {
	if order, ok := orderAliases[value]; ok {
		return order, nil
	}
	for _, order := range models.ValidOrderings {
		if value == order {
			return order, nil
		}
	}
	return "", fmt.Errorf("unknown order %q", value)
}

func runList(c *cobra.Command, _ []string) error {
	order, err := resolveOrder(listOrder)
	if err != nil {
		return err
	}
	api, err := cmd.NewClient()
	if err != nil {
		return err
	}

	lf := form.NewListForm(api, newNotifier(c))
	lf.SetFilter(models.ListFilter{Search: listSearch, OrderBy: order, Page: listPage})
	if err := lf.Refresh(c.Context()); err != nil {
		return cmd.Reported(err)
	}

	if listInteractive {
		return interactiveList(c, lf)
	}
	if cmd.JSONOutput() {
		if s, ok := lf.State().(form.Success[*models.LinkPage]); ok {
			return printJSON(c.OutOrStdout(), s.Result)
		}
	}
	renderListPage(c.OutOrStdout(), lf)
	return nil
}

func renderListPage(w io.Writer, lf *form.ListForm) {
	printLinkTable(w, lf.Links())
	fmt.Fprintf(w, "\nPage %d, %d URL(s) in total", lf.Page(), lf.Count())
	if q := lf.Query(); q != "" {
		fmt.Fprintf(w, " matching %q", q)
	}
	fmt.Fprintln(w)
}

// interactiveList runs the search prompt until "q" or end of input.
func interactiveList(c *cobra.Command, lf *form.ListForm) error {
	out := c.OutOrStdout()
	in := bufio.NewReader(c.InOrStdin())
	confirm := promptConfirmer(in, out)
	ctx := c.Context()

	renderListPage(out, lf)
	for {
		fmt.Fprint(out, "\nsearch> ")
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return nil
		}
		line = strings.TrimSpace(line)
		err = nil

		switch {
		case line == "q" || line == "quit":
			return nil
		case line == "n":
			if !lf.HasNext() {
				fmt.Fprintln(out, "Already on the last page.")
				continue
			}
			lf.SetPage(lf.Page() + 1)
			err = lf.Refresh(ctx)
		case line == "p":
			if !lf.HasPrevious() {
				fmt.Fprintln(out, "Already on the first page.")
				continue
			}
			lf.SetPage(lf.Page() - 1)
			err = lf.Refresh(ctx)
		case strings.HasPrefix(line, "d "):
			id, perr := parseID(strings.TrimSpace(strings.TrimPrefix(line, "d ")))
			if perr != nil {
				fmt.Fprintln(c.ErrOrStderr(), perr)
				continue
			}
			err = lf.Delete(ctx, id, confirm)
			if errors.Is(err, customerrors.ErrDeleteNotConfirmed) {
				continue
			}
		default:
			lf.SetQuery(line)
			err = lf.Search(ctx)
		}

		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			cmd.Logger.Debug("list action failed", zap.String("input", line), zap.Error(err))
			continue
		}
		renderListPage(out, lf)
	}
}
