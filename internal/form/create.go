package form

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
	"github.com/axellelanca/shortlinkctl/internal/models"
)

// LinkCreator is the part of the API client the create screen needs.
type LinkCreator interface {
	CreateLink(ctx context.Context, req models.CreateLinkRequest) (*models.ShortLink, error)
}

// CreateInput holds what the user typed on the create screen.
type CreateInput struct {
	OriginalURL string
	CustomCode  string
	Title       string
	Description string
	ExpiresAt   *time.Time
}

// request copies the input as typed. The rules run on the raw values, so
// surrounding whitespace is rejected rather than trimmed.
func (in CreateInput) request() models.CreateLinkRequest {
	return models.CreateLinkRequest{
		OriginalURL: in.OriginalURL,
		CustomCode:  in.CustomCode,
		Title:       in.Title,
		Description: in.Description,
		ExpiresAt:   in.ExpiresAt,
	}
}

// CreateForm drives the create screen. At most one submission is in flight.
type CreateForm struct {
	machine
	client   LinkCreator
	notifier Notifier
	validate *validator.Validate

	input CreateInput
}

// NewCreateForm returns a form in the Idle state. A nil notifier drops
// notifications.
func NewCreateForm(client LinkCreator, notifier Notifier, opts ...Option) *CreateForm {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &CreateForm{
		machine:  newMachine(buildOptions(opts)),
		client:   client,
		notifier: notifier,
		validate: newValidator(),
	}
}

// SetInput replaces the current input.
func (f *CreateForm) SetInput(in CreateInput) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.input = in
}

// Input returns the current input.
func (f *CreateForm) Input() CreateInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

// SubmitDisabled reports whether the submit control must be disabled.
func (f *CreateForm) SubmitDisabled() bool {
	return f.Busy()
}

// ShortURL returns the short URL of the last successful submission.
func (f *CreateForm) ShortURL() (string, bool) {
	if s, ok := f.State().(Success[*models.ShortLink]); ok {
		return s.Result.ShortURL, true
	}
	return "", false
}

// Submit validates the input and, if it passes, sends exactly one create
// request. A local rule violation returns a customerrors.ValidationError
// without contacting the server. On success the inputs are cleared and the
// created link is returned.
func (f *CreateForm) Submit(ctx context.Context) (*models.ShortLink, error) {
	f.mu.Lock()
	if f.busyLocked() {
		f.mu.Unlock()
		return nil, customerrors.ErrSubmissionInFlight
	}
	f.setLocked(Validating{})
	req := f.input.request()

	if violations := validateCreate(f.validate, req); len(violations) > 0 {
		first := violations[0]
		f.setLocked(Failed{Field: first.Field, Message: first.Message, Local: true, Err: first})
		f.mu.Unlock()
		return nil, first
	}
	f.setLocked(Submitting{})
	f.mu.Unlock()

	link, err := f.client.CreateLink(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		field, msg := createFailureMessage(err)
		f.setLocked(Failed{Field: field, Message: msg, Err: err})
		f.notifier.Error(msg)
		return nil, err
	}

	f.input = CreateInput{}
	f.setLocked(Success[*models.ShortLink]{Result: link})
	f.notifier.Success(MsgCreated)
	return link, nil
}

// createFailureMessage picks the message to surface for a failed create: the
// server's original_url message, then custom_code, then any other field, then
// the generic message.
func createFailureMessage(err error) (field, msg string) {
	var reqErr *customerrors.RequestError
	if !errors.As(err, &reqErr) {
		return "", MsgCreateFailed
	}
	for _, name := range append([]string{"original_url", "custom_code"}, reqErr.Fields.Names()...) {
		if m, ok := reqErr.Fields.First(name); ok {
			return name, m
		}
	}
	if reqErr.Detail != "" {
		return "", reqErr.Detail
	}
	return "", MsgCreateFailed
}
