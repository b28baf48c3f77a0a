package feed

import (
	"reflect"
	"testing"
	"time"

	"github.com/iliyamo/event-feed/internal/model"
)

func ids(list []CommentView) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, v.ID)
	}
	return out
}

func TestComposeOrdersNewestFirst(t *testing.T) {
	t1 := at(2025, 2, 1, 10, 0)
	comments := []model.CommentRecord{
		{ID: "a", AuthorID: "u1", Content: "first", CreatedAt: t1},
		{ID: "b", AuthorID: "u2", Content: "second", CreatedAt: t1.Add(time.Minute)},
	}
	got := NewComposer(StandardDefaults()).Compose(comments, nil)
	if !reflect.DeepEqual(ids(got), []string{"b", "a"}) {
		t.Fatalf("order = %v, want [b a]", ids(got))
	}
}

func TestComposeTiesKeepInputOrder(t *testing.T) {
	ts := at(2025, 2, 1, 10, 0)
	comments := []model.CommentRecord{
		{ID: "x", CreatedAt: ts},
		{ID: "newest", CreatedAt: ts.Add(time.Hour)},
		{ID: "y", CreatedAt: ts},
		{ID: "z", CreatedAt: ts},
	}
	got := NewComposer(StandardDefaults()).Compose(comments, nil)
	if !reflect.DeepEqual(ids(got), []string{"newest", "x", "y", "z"}) {
		t.Fatalf("order = %v", ids(got))
	}
}

func TestComposeResolvesAuthors(t *testing.T) {
	ts := at(2025, 3, 9, 8, 0)
	comments := []model.CommentRecord{
		{ID: "c1", AuthorID: "known", Content: "hello", CreatedAt: ts},
		{ID: "c2", AuthorID: "deleted", Content: "still here", CreatedAt: ts.Add(-time.Hour)},
	}
	profiles := []model.Profile{{ID: "known", FullName: "Juan", AvatarURL: "/a/juan.png"}}

	got := NewComposer(StandardDefaults()).Compose(comments, profiles)
	if len(got) != 2 {
		t.Fatalf("len = %d, comment without profile was dropped", len(got))
	}
	if got[0].Name != "Juan" || got[0].Avatar != "/a/juan.png" || got[0].Date != "Mar 9, 2025" {
		t.Errorf("known author = %+v", got[0])
	}
	if got[1].Name != "Anonymous" || got[1].Avatar != "/placeholder.svg" || got[1].Text != "still here" {
		t.Errorf("anonymous author = %+v", got[1])
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	ts := at(2025, 3, 9, 8, 0)
	comments := []model.CommentRecord{
		{ID: "1", CreatedAt: ts}, {ID: "2", CreatedAt: ts.Add(time.Second)},
		{ID: "3", CreatedAt: ts}, {ID: "4", CreatedAt: ts.Add(-time.Second)},
	}
	c := NewComposer(StandardDefaults())
	first := c.Compose(comments, nil)
	second := c.Compose(comments, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("compose not idempotent: %v vs %v", ids(first), ids(second))
	}
	if comments[0].ID != "1" || comments[1].ID != "2" {
		t.Fatalf("input reordered")
	}
}

func TestAppendOptimisticThenRefetch(t *testing.T) {
	c := NewComposer(StandardDefaults())
	ts := at(2025, 4, 1, 12, 0)
	existing := c.Compose([]model.CommentRecord{{ID: "old", AuthorID: "u1", CreatedAt: ts}}, nil)

	posted := model.CommentRecord{ID: "new", AuthorID: "me", Content: "see you there", CreatedAt: ts.Add(time.Minute)}
	me := &model.Profile{ID: "me", FullName: "Ana"}
	local := c.AppendOptimistic(existing, posted, me)

	if !reflect.DeepEqual(ids(local), []string{"new", "old"}) {
		t.Fatalf("optimistic order = %v", ids(local))
	}
	if local[0].Date != JustNow || !local[0].Pending || local[0].Name != "Ana" {
		t.Fatalf("optimistic entry = %+v", local[0])
	}
	if len(existing) != 1 {
		t.Fatalf("input thread modified")
	}

	// the refetch now contains the posted comment
	refetched := c.Compose([]model.CommentRecord{
		{ID: "old", AuthorID: "u1", CreatedAt: ts},
		posted,
	}, []model.Profile{*me})
	merged := Reconcile(local, refetched)
	if !reflect.DeepEqual(ids(merged), []string{"new", "old"}) {
		t.Fatalf("merged = %v, want [new old]", ids(merged))
	}
	if merged[0].Pending || merged[0].Date == JustNow {
		t.Fatalf("authoritative entry did not replace optimistic one: %+v", merged[0])
	}
}

func TestAppendOptimisticIgnoresKnownID(t *testing.T) {
	c := NewComposer(StandardDefaults())
	rec := model.CommentRecord{ID: "dup", CreatedAt: at(2025, 4, 1, 12, 0)}
	once := c.AppendOptimistic(nil, rec, nil)
	twice := c.AppendOptimistic(once, rec, nil)
	if len(twice) != 1 {
		t.Fatalf("len = %d, want 1", len(twice))
	}
	if twice[0].Name != "Anonymous" {
		t.Fatalf("unauthored optimistic comment name = %q", twice[0].Name)
	}
}

func TestReconcileKeepsPendingNotYetVisible(t *testing.T) {
	ts := at(2025, 4, 1, 12, 0)
	local := []CommentView{
		{ID: "mine", CreatedAt: ts.Add(2 * time.Minute), Pending: true},
		{ID: "removed", CreatedAt: ts.Add(time.Minute)},
		{ID: "a", CreatedAt: ts},
	}
	fresh := []CommentView{
		{ID: "other", CreatedAt: ts.Add(3 * time.Minute)},
		{ID: "a", CreatedAt: ts},
	}
	got := Reconcile(local, fresh)
	if !reflect.DeepEqual(ids(got), []string{"other", "mine", "a"}) {
		t.Fatalf("reconciled = %v", ids(got))
	}
}

func TestReconcileDropsDuplicateIDs(t *testing.T) {
	ts := at(2025, 4, 1, 12, 0)
	fresh := []CommentView{{ID: "a", CreatedAt: ts}, {ID: "a", CreatedAt: ts}}
	local := []CommentView{{ID: "p", CreatedAt: ts, Pending: true}, {ID: "p", CreatedAt: ts, Pending: true}}
	got := Reconcile(local, fresh)
	if !reflect.DeepEqual(ids(got), []string{"p", "a"}) {
		t.Fatalf("reconciled = %v", ids(got))
	}
}
