package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/axellelanca/shortlinkctl/cmd"
	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
	"github.com/axellelanca/shortlinkctl/internal/form"
)

var (
	createURL         string
	createCode        string
	createTitle       string
	createDescription string
	createExpiresAt   string
)

// CreateCmd represents the 'create' command
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a short URL",
	Long: `Shortens a URL through the API and prints the short URL.

Example:
  shortlinkctl create --url="https://www.google.com/search?q=go+lang" --code=golang`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	CreateCmd.Flags().StringVar(&createURL, "url", "", "the long URL to shorten (http or https)")
	CreateCmd.Flags().StringVar(&createCode, "code", "", "optional custom short code, 3-20 letters or digits")
	CreateCmd.Flags().StringVar(&createTitle, "title", "", "optional title")
	CreateCmd.Flags().StringVar(&createDescription, "description", "", "optional description")
	CreateCmd.Flags().StringVar(&createExpiresAt, "expires-at", "", "optional expiry, RFC 3339 (2025-01-31T23:59:00Z)")

	cmd.RootCmd.AddCommand(CreateCmd)
}

func runCreate(c *cobra.Command, _ []string) error {
	input := form.CreateInput{
		OriginalURL: createURL,
		CustomCode:  createCode,
		Title:       createTitle,
		Description: createDescription,
	}
	if createExpiresAt != "" {
		at, err := time.Parse(time.RFC3339, createExpiresAt)
		if err != nil {
			return fmt.Errorf("invalid --expires-at: %w", err)
		}
		input.ExpiresAt = &at
	}

	api, err := cmd.NewClient()
	if err != nil {
		return err
	}

	f := form.NewCreateForm(api, newNotifier(c))
	f.SetInput(input)
	link, err := f.Submit(c.Context())
	if err != nil {
		var invalid customerrors.ValidationError
		if errors.As(err, &invalid) {
			return fmt.Errorf("%s: %s", flagFor(invalid.Field), invalid.Message)
		}
		cmd.Logger.Debug("create failed", zap.Error(err))
		return cmd.Reported(err)
	}

	if cmd.JSONOutput() {
		return printJSON(c.OutOrStdout(), link)
	}
	fmt.Fprintf(c.OutOrStdout(), "Short URL: %s\n", link.ShortURL)
	fmt.Fprintf(c.OutOrStdout(), "Code:      %s\n", link.ShortCode)
	return nil
}

// flagFor names the flag a request field comes from.
func flagFor(field string) string {
	switch field {
	case "original_url":
		return "--url"
	case "custom_code":
		return "--code"
	default:
		return "--" + field
	}
}
