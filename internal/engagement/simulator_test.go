package engagement

import (
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"snapwallet/internal/models"
	"snapwallet/internal/wallet"
)

func TestGrow_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	params := DefaultParams()

	for i := 0; i < 1000; i++ {
		before := models.Photo{Views: 10, Likes: 3, Shares: 1, Comments: 2, IsVisible: true}
		after := Grow(before, rng, params)

		viewsDelta := after.Views - before.Views
		if viewsDelta < 5 || viewsDelta > 19 {
			t.Fatalf("views delta %d outside [5,19]", viewsDelta)
		}

		likesDelta := after.Likes - before.Likes
		if likesDelta != 0 && likesDelta != 1 && likesDelta != 2 {
			t.Fatalf("likes delta %d outside {0,1,2}", likesDelta)
		}

		if d := after.Shares - before.Shares; d != 0 && d != 1 {
			t.Fatalf("shares delta %d outside {0,1}", d)
		}
		if d := after.Comments - before.Comments; d != 0 && d != 1 {
			t.Fatalf("comments delta %d outside {0,1}", d)
		}

		if after.IsVisible != before.IsVisible {
			t.Fatal("grow must not touch visibility")
		}
		if after.ID != before.ID || after.URL != before.URL || after.Feedback != before.Feedback {
			t.Fatal("grow must only touch counters")
		}
	}
}

func TestGrow_DeterministicWithSeed(t *testing.T) {
	params := DefaultParams()
	p := models.Photo{IsVisible: true}

	a := Grow(p, rand.New(rand.NewSource(7)), params)
	b := Grow(p, rand.New(rand.NewSource(7)), params)

	if a != b {
		t.Errorf("same seed must produce the same growth: %+v vs %+v", a, b)
	}
}

func TestTick_GrowsHiddenPhotosAndSkipsLedger(t *testing.T) {
	store := wallet.NewStore(slog.Default(), []models.Account{{ID: "u1", Username: "tester"}})
	photo, _, _ := store.RecordUpload("u1", "url", "")
	store.HidePhoto("u1", photo.ID)

	historyBefore, _ := store.History("u1")

	sim := NewSimulator(slog.Default(), store, time.Second, DefaultParams(), rand.New(rand.NewSource(1)), nil)
	for i := 0; i < 5; i++ {
		sim.Tick()
	}

	acc, _ := store.Get("u1")
	if acc.Photos[0].Views < 25 {
		t.Errorf("expected at least 5 ticks * 5 views on hidden photo, got %d", acc.Photos[0].Views)
	}
	if acc.Photos[0].IsVisible {
		t.Error("tick must not change visibility")
	}

	historyAfter, _ := store.History("u1")
	if len(historyAfter) != len(historyBefore) {
		t.Errorf("tick must not emit history entries: %d -> %d", len(historyBefore), len(historyAfter))
	}
}

func TestTick_NeverDecreasesCounters(t *testing.T) {
	store := wallet.NewStore(slog.Default(), []models.Account{{ID: "u1", Username: "tester"}})
	store.RecordUpload("u1", "a", "")
	store.RecordUpload("u1", "b", "")

	sim := NewSimulator(slog.Default(), store, time.Second, DefaultParams(), rand.New(rand.NewSource(99)), nil)

	prev, _ := store.Get("u1")
	for i := 0; i < 50; i++ {
		sim.Tick()
		cur, _ := store.Get("u1")
		for j := range cur.Photos {
			if cur.Photos[j].Views < prev.Photos[j].Views ||
				cur.Photos[j].Likes < prev.Photos[j].Likes ||
				cur.Photos[j].Shares < prev.Photos[j].Shares ||
				cur.Photos[j].Comments < prev.Photos[j].Comments {
				t.Fatalf("counter decreased at tick %d: %+v -> %+v", i, prev.Photos[j], cur.Photos[j])
			}
		}
		prev = cur
	}
}

func TestSimulator_StartStop(t *testing.T) {
	store := wallet.NewStore(slog.Default(), []models.Account{{ID: "u1"}})
	store.RecordUpload("u1", "url", "")

	ticked := make(chan struct{}, 64)
	sim := NewSimulator(slog.Default(), store, 5*time.Millisecond, DefaultParams(), rand.New(rand.NewSource(3)), func() {
		select {
		case ticked <- struct{}{}:
		default:
		}
	})

	sim.Start()
	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("simulator never ticked")
	}
	sim.Stop()

	// Stop must be idempotent and leave no goroutine behind.
	sim.Stop()
}
