package feed

import (
	"slices"
	"time"

	"github.com/iliyamo/event-feed/internal/model"
)

// CommentView is a comment joined with its author's profile.
type CommentView struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Date      string    `json:"date"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	// Pending marks an entry inserted locally that has not yet been seen
	// in an authoritative fetch.
	Pending bool `json:"pending,omitempty"`
}

// Composer joins comments to profiles.  It performs no I/O.
type Composer struct {
	defaults Defaults
}

// NewComposer returns a Composer using the anonymous name and avatar of d.
func NewComposer(d Defaults) Composer {
	return Composer{defaults: d.Complete()}
}

// Compose resolves the author of every comment and orders the thread
// newest first.  Comments whose author has no profile are kept and shown
// as anonymous.  Equal timestamps keep their input order.
func (c Composer) Compose(comments []model.CommentRecord, profiles []model.Profile) []CommentView {
	byID := make(map[string]model.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	out := make([]CommentView, 0, len(comments))
	for _, rec := range comments {
		var author *model.Profile
		if p, ok := byID[rec.AuthorID]; ok {
			author = &p
		}
		v := c.view(rec, author)
		v.Date = FormatCommentDate(rec.CreatedAt)
		out = append(out, v)
	}
	sortNewestFirst(out)
	return out
}

// AppendOptimistic returns a new thread with rec, authored by the current
// actor, placed first and dated "Just now".  When list already holds
// rec.ID the thread is returned unchanged.
func (c Composer) AppendOptimistic(list []CommentView, rec model.CommentRecord, author *model.Profile) []CommentView {
	for _, v := range list {
		if v.ID == rec.ID {
			return slices.Clone(list)
		}
	}
	v := c.view(rec, author)
	v.Date = JustNow
	v.Pending = true
	out := make([]CommentView, 0, len(list)+1)
	out = append(out, v)
	return append(out, list...)
}

// Reconcile merges a refetched thread into the local one by comment id.
// Entries of fresh always win.  Local pending entries that fresh does not
// contain yet are kept; other local entries are dropped.  The result has
// no duplicate ids and is ordered newest first.
func Reconcile(local, fresh []CommentView) []CommentView {
	inFresh := make(map[string]struct{}, len(fresh))
	for _, v := range fresh {
		inFresh[v.ID] = struct{}{}
	}
	added := make(map[string]struct{}, len(local)+len(fresh))
	out := make([]CommentView, 0, len(local)+len(fresh))
	for _, v := range local {
		if !v.Pending {
			continue
		}
		if _, ok := inFresh[v.ID]; ok {
			continue
		}
		if _, ok := added[v.ID]; ok {
			continue
		}
		added[v.ID] = struct{}{}
		out = append(out, v)
	}
	for _, v := range fresh {
		if _, ok := added[v.ID]; ok {
			continue
		}
		added[v.ID] = struct{}{}
		out = append(out, v)
	}
	sortNewestFirst(out)
	return out
}

func (c Composer) view(rec model.CommentRecord, author *model.Profile) CommentView {
	d := c.defaults.Complete()
	v := CommentView{
		ID:        rec.ID,
		AuthorID:  rec.AuthorID,
		Name:      d.AnonymousName,
		Avatar:    d.Avatar,
		Text:      rec.Content,
		CreatedAt: rec.CreatedAt,
	}
	if author != nil {
		v.Name = orDefault(author.FullName, d.AnonymousName)
		v.Avatar = orDefault(author.AvatarURL, d.Avatar)
	}
	return v
}

func sortNewestFirst(list []CommentView) {
	slices.SortStableFunc(list, func(a, b CommentView) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
