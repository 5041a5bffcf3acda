package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/axellelanca/shortlinkctl/cmd"
	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
	"github.com/axellelanca/shortlinkctl/internal/form"
	"github.com/axellelanca/shortlinkctl/internal/models"
)

// GetCmd represents the 'get' command
var GetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one short URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		api, err := cmd.NewClient()
		if err != nil {
			return err
		}
		link, err := api.GetLink(c.Context(), id)
		if err != nil {
			return notFoundOr(err, id)
		}
		if cmd.JSONOutput() {
			return printJSON(c.OutOrStdout(), link)
		}
		printLink(c.OutOrStdout(), link)
		return nil
	},
}

var (
	updateURL         string
	updateTitle       string
	updateDescription string
	updateExpiresAt   string
	updateActive      bool
)

// UpdateCmd represents the 'update' command
var UpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change the target, title, description, expiry or status of a short URL",
	Long: `Sends a partial update: only the flags given on the command line are changed.

Example:
  shortlinkctl update 42 --title="Spring sale" --expires-at=2025-06-01T00:00:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

// DeleteCmd represents the 'delete' command
var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a short URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var deleteYes bool

func init() {
	UpdateCmd.Flags().StringVar(&updateURL, "url", "", "new original URL")
	UpdateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	UpdateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")
	UpdateCmd.Flags().StringVar(&updateExpiresAt, "expires-at", "", "new expiry, RFC 3339")
	UpdateCmd.Flags().BoolVar(&updateActive, "active", true, "whether the short URL redirects")

	DeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "do not ask for confirmation")

	cmd.RootCmd.AddCommand(GetCmd, UpdateCmd, DeleteCmd)
}

func runUpdate(c *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var req models.UpdateLinkRequest
	flags := c.Flags()
	if flags.Changed("url") {
		req.OriginalURL = &updateURL
	}
	if flags.Changed("title") {
		req.Title = &updateTitle
	}
	if flags.Changed("description") {
		req.Description = &updateDescription
	}
	if flags.Changed("expires-at") {
		at, err := time.Parse(time.RFC3339, updateExpiresAt)
		if err != nil {
			return fmt.Errorf("invalid --expires-at: %w", err)
		}
		req.ExpiresAt = &at
	}
	if flags.Changed("active") {
		req.IsActive = &updateActive
	}
	if req == (models.UpdateLinkRequest{}) {
		return errors.New("nothing to update, pass at least one flag")
	}

	api, err := cmd.NewClient()
	if err != nil {
		return err
	}
	link, err := api.UpdateLink(c.Context(), id, req)
	if err != nil {
		var reqErr *customerrors.RequestError
		if errors.As(err, &reqErr) && !customerrors.IsNotFound(err) {
			if msg, ok := reqErr.FirstMessage("original_url", "expires_at"); ok {
				return errors.New(msg)
			}
		}
		return notFoundOr(err, id)
	}

	if cmd.JSONOutput() {
		return printJSON(c.OutOrStdout(), link)
	}
	printLink(c.OutOrStdout(), link)
	return nil
}

func runDelete(c *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	api, err := cmd.NewClient()
	if err != nil {
		return err
	}

	lf := form.NewListForm(api, newNotifier(c))
	if err := lf.Delete(c.Context(), id, deleteConfirmer(deleteYes, c.InOrStdin(), c.OutOrStdout())); err != nil {
		if errors.Is(err, customerrors.ErrDeleteNotConfirmed) {
			fmt.Fprintln(c.OutOrStdout(), "Aborted.")
			return nil
		}
		return cmd.Reported(err)
	}
	return nil
}

// deleteConfirmer prompts on out unless yes is set, in which case every
// confirmation is granted.
func deleteConfirmer(yes bool, in io.Reader, out io.Writer) form.Confirmer {
	if yes {
		return form.ConfirmFunc(func(string) bool { return true })
	}
	return promptConfirmer(in, out)
}

// notFoundOr turns a 404 into a readable error.
func notFoundOr(err error, id int64) error {
	if customerrors.IsNotFound(err) {
		return fmt.Errorf("short URL %d not found", id)
	}
	return err
}
