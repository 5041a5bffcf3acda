package form

import (
	"context"
	"slices"

	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
	"github.com/axellelanca/shortlinkctl/internal/models"
)

// LinkLister is the part of the API client the list screen needs.
type LinkLister interface {
	ListLinks(ctx context.Context, filter models.ListFilter) (*models.LinkPage, error)
	DeleteLink(ctx context.Context, id int64) error
}

// ListForm drives the list screen: a search box, an ordering, and a page of
// links with per-row delete.
//
// Searches are ticketed. When several overlap, only the response of the most
// recently issued one is applied; older ones return ErrStaleResponse.
type ListForm struct {
	machine
	client   LinkLister
	notifier Notifier

	query   string // what is typed in the search box
	applied models.ListFilter
	seq     uint64

	links []models.ShortLink
	count int
	next  bool
	prev  bool
}

// NewListForm returns a list controller ordered newest first.
func NewListForm(client LinkLister, notifier Notifier, opts ...Option) *ListForm {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ListForm{
		machine:  newMachine(buildOptions(opts)),
		client:   client,
		notifier: notifier,
		applied:  models.ListFilter{OrderBy: models.OrderNewest},
	}
}

// SetQuery updates the search box without searching.
func (f *ListForm) SetQuery(q string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = q
}

// Query returns the search box content.
func (f *ListForm) Query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

// SetFilter replaces the applied filter and the search box content. The next
// Refresh uses it as is.
func (f *ListForm) SetFilter(filter models.ListFilter) {
	if !slices.Contains(models.ValidOrderings, filter.OrderBy) {
		filter.OrderBy = models.OrderNewest
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = filter.Search
	f.applied = filter
}

// Page returns the page the applied filter points at, starting at 1.
func (f *ListForm) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return max(f.applied.Page, 1)
}

// SetOrder changes the ordering applied by the next fetch. Unknown values are ignored.
func (f *ListForm) SetOrder(orderBy string) {
	if !slices.Contains(models.ValidOrderings, orderBy) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied.OrderBy = orderBy
}

// SetPage selects the page fetched by the next Refresh.
func (f *ListForm) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied.Page = page
}

// Search applies the search box content, goes back to page one and fetches.
func (f *ListForm) Search(ctx context.Context) error {
	f.mu.Lock()
	f.applied.Search = f.query
	f.applied.Page = 0
	f.mu.Unlock()
	return f.Refresh(ctx)
}

// Refresh fetches with the applied filter.
func (f *ListForm) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.seq++
	ticket := f.seq
	filter := f.applied
	f.setLocked(Submitting{})
	f.mu.Unlock()

	page, err := f.client.ListLinks(ctx, filter)

	f.mu.Lock()
	defer f.mu.Unlock()
	if ticket != f.seq {
		return customerrors.ErrStaleResponse
	}
	if err != nil {
		f.setLocked(Failed{Message: MsgFetchFailed, Err: err})
		f.notifier.Error(MsgFetchFailed)
		return err
	}

	f.links = page.Results
	f.count = page.Count
	f.next = page.Next != nil
	f.prev = page.Previous != nil
	f.setLocked(Success[*models.LinkPage]{Result: page})
	return nil
}

// Links returns a copy of the displayed links.
func (f *ListForm) Links() []models.ShortLink {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.links)
}

// Count returns the total number of matching links.
func (f *ListForm) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

// HasNext reports whether the server has a following page.
func (f *ListForm) HasNext() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next
}

// HasPrevious reports whether the server has a preceding page.
func (f *ListForm) HasPrevious() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prev
}

// Delete asks confirm for approval, then deletes the link. A nil confirm
// counts as a refusal. On success the row is dropped from the displayed page
// without refetching.
func (f *ListForm) Delete(ctx context.Context, id int64, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm(MsgConfirmDelete) {
		return customerrors.ErrDeleteNotConfirmed
	}

	if err := f.client.DeleteLink(ctx, id); err != nil {
		f.notifier.Error(MsgDeleteFailed)
		return err
	}

	f.mu.Lock()
	before := len(f.links)
	f.links = slices.DeleteFunc(f.links, func(l models.ShortLink) bool { return l.ID == id })
	if len(f.links) < before && f.count > 0 {
		f.count--
	}
	f.mu.Unlock()

	f.notifier.Success(MsgDeleted)
	return nil
}
