package clips_test

import (
	"context"
	"errors"
	"testing"

	"clipvault/internal/clips"
	"clipvault/internal/testsupport"
)

func TestAddAndGetRoundTrip(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	created, err := store.Add(ctx, clips.NewClip{
		Reference:  "https://clips.twitch.tv/FancyRally",
		ObjectKey:  "FancyRally",
		VideoURL:   "https://clips.example.com/FancyRally.mp4",
		Player:     "Jordan Reyes",
		Tournament: "Spring Open",
		EventType:  clips.EventKill,
		Tags:       []string{"highlight", "finals"},
		Notes:      "match point",
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Reference != created.Reference {
		t.Fatalf("reference = %q, want %q", got.Reference, created.Reference)
	}
	if got.Player != "Jordan Reyes" || got.Tournament != "Spring Open" {
		t.Fatalf("unexpected metadata: %+v", got)
	}
	if got.EventType != clips.EventKill {
		t.Fatalf("event type = %q, want %q", got.EventType, clips.EventKill)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "highlight" || got.Tags[1] != "finals" {
		t.Fatalf("tags = %v", got.Tags)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.Add(ctx, clips.NewClip{ObjectKey: "abc"}); err == nil {
		t.Fatal("expected error for missing reference")
	}
	if _, err := store.Add(ctx, clips.NewClip{Reference: "ref"}); err == nil {
		t.Fatal("expected error for missing object key")
	}
	if _, err := store.Add(ctx, clips.NewClip{
		Reference: "ref",
		ObjectKey: "abc",
		EventType: clips.EventType("smash"),
	}); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	if _, err := store.Get(context.Background(), "no-such-id"); !errors.Is(err, clips.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListFilters(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	mustAdd := func(nc clips.NewClip) *clips.Clip {
		t.Helper()
		clip, err := store.Add(ctx, nc)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		return clip
	}

	mustAdd(clips.NewClip{
		Reference: "r1", ObjectKey: "k1",
		Player: "Jordan Reyes", Tournament: "Spring Open", EventType: clips.EventKill,
	})
	mustAdd(clips.NewClip{
		Reference: "r2", ObjectKey: "k2",
		Player: "Sam Ito", Tournament: "Winter Cup", EventType: clips.EventAce,
	})
	mustAdd(clips.NewClip{
		Reference: "r3", ObjectKey: "k3",
		Player: "Jordan Reyes", Tournament: "Winter Cup", EventType: clips.EventDig,
	})

	all, err := store.List(ctx, clips.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}

	byPlayer, err := store.List(ctx, clips.ListFilter{Search: "jordan"})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if len(byPlayer) != 2 {
		t.Fatalf("search matched %d rows, want 2", len(byPlayer))
	}

	byEvent, err := store.List(ctx, clips.ListFilter{EventType: clips.EventAce})
	if err != nil {
		t.Fatalf("List event: %v", err)
	}
	if len(byEvent) != 1 || byEvent[0].Player != "Sam Ito" {
		t.Fatalf("event filter rows = %+v", byEvent)
	}

	limited, err := store.List(ctx, clips.ListFilter{Limit: 1})
	if err != nil {
		t.Fatalf("List limit: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit returned %d rows, want 1", len(limited))
	}
}

func TestUpdatePersistsEdits(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	clip := testsupport.AddClip(t, store, "https://clips.twitch.tv/Edited", "Edited")
	clip.Player = "Alex Novak"
	clip.EventType = clips.EventBlock
	clip.Tags = []string{"defense"}
	clip.Notes = "triple block"

	if err := store.Update(ctx, clip); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.Get(ctx, clip.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Player != "Alex Novak" || got.EventType != clips.EventBlock || got.Notes != "triple block" {
		t.Fatalf("update not persisted: %+v", got)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Fatalf("updated_at %v before created_at %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	err := store.Update(context.Background(), &clips.Clip{ID: "ghost"})
	if !errors.Is(err, clips.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	clip := testsupport.AddClip(t, store, "ref", "key")
	if err := store.Remove(ctx, clip.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := store.Get(ctx, clip.ID); !errors.Is(err, clips.ErrNotFound) {
		t.Fatalf("err after remove = %v, want ErrNotFound", err)
	}
	if err := store.Remove(ctx, clip.ID); !errors.Is(err, clips.ErrNotFound) {
		t.Fatalf("second remove err = %v, want ErrNotFound", err)
	}
}

func TestReopenKeepsRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	clip := testsupport.AddClip(t, store, "ref", "key")
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	got, err := reopened.Get(context.Background(), clip.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.ObjectKey != "key" {
		t.Fatalf("object key = %q, want %q", got.ObjectKey, "key")
	}

	count, err := reopened.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestValidEventType(t *testing.T) {
	cases := map[string]bool{
		"":      true,
		"serve": true,
		"kill":  true,
		"other": true,
		"smash": false,
		"Kill":  false,
	}
	for value, want := range cases {
		if got := clips.ValidEventType(value); got != want {
			t.Errorf("ValidEventType(%q) = %v, want %v", value, got, want)
		}
	}
}
