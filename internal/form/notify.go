package form

// User facing messages.
const (
	MsgCreated         = "Short URL created successfully!"
	MsgCreateFailed    = "Failed to create short URL"
	MsgFetchFailed     = "Failed to fetch URLs"
	MsgDeleted         = "URL deleted successfully"
	MsgDeleteFailed    = "Failed to delete URL"
	MsgAnalyticsFailed = "Failed to fetch analytics"
	MsgConfirmDelete   = "Are you sure you want to delete this URL?"
)

// Notifier shows transient notifications.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }
