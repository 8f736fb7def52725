package wallet

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"snapwallet/internal/models"
)

// Store holds the account collection for the process lifetime. Each mutation
// builds a fresh account snapshot (cloned slices) and swaps the pointer under
// the lock, so a concurrent read never observes a torn write. Accounts are
// never added or removed after seeding.
type Store struct {
	mu       sync.RWMutex
	log      *slog.Logger
	accounts map[string]*models.Account
	order    []string // seed order, for stable listings
}

func NewStore(log *slog.Logger, seeds []models.Account) *Store {
	s := &Store{
		log:      log,
		accounts: make(map[string]*models.Account, len(seeds)),
		order:    make([]string, 0, len(seeds)),
	}
	for i := range seeds {
		acc := cloneAccount(seeds[i])
		if acc.ID == "" {
			acc.ID = uuid.NewString()
		}
		s.accounts[acc.ID] = &acc
		s.order = append(s.order, acc.ID)
	}
	return s
}

// List returns account snapshots in seed order.
func (s *Store) List() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.accounts[id])
	}
	return out
}

func (s *Store) Get(id string) (models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return models.Account{}, false
	}
	return *acc, true
}

// Stats computes the derived snapshot for one account.
func (s *Store) Stats(id string) (models.Stats, bool) {
	acc, ok := s.Get(id)
	if !ok {
		return models.Stats{}, false
	}
	return ComputeStats(acc), true
}

// VisiblePhotos is the feed projection: hidden photos are excluded here and
// only here.
func (s *Store) VisiblePhotos(id string) ([]models.Photo, bool) {
	acc, ok := s.Get(id)
	if !ok {
		return nil, false
	}
	out := make([]models.Photo, 0, len(acc.Photos))
	for _, p := range acc.Photos {
		if p.IsVisible {
			out = append(out, p)
		}
	}
	return out, true
}

func (s *Store) History(id string) ([]models.HistoryItem, bool) {
	acc, ok := s.Get(id)
	if !ok {
		return nil, false
	}
	return acc.History, true
}

// RecordUpload creates the new photo and its upload ledger entry in one
// snapshot swap: both effects become visible together, never partially.
// The photo is prepended; newest first is a visible invariant.
func (s *Store) RecordUpload(accountID, url, feedback string) (models.Photo, models.HistoryItem, bool) {
	now := time.Now()
	photo := models.Photo{
		ID:        uuid.NewString(),
		URL:       url,
		Timestamp: now,
		Feedback:  feedback,
		IsVisible: true,
	}
	entry := newHistoryItem(models.HistoryUpload, models.RewardPerUpload, models.CurrencyUnit, "", now)

	ok := s.mutate(accountID, func(acc *models.Account) bool {
		acc.Photos = append([]models.Photo{photo}, acc.Photos...)
		acc.History = append([]models.HistoryItem{entry}, acc.History...)
		return true
	})
	if !ok {
		return models.Photo{}, models.HistoryItem{}, false
	}

	s.log.Info("upload_recorded", "account_id", accountID, "photo_id", photo.ID, "reward", models.RewardPerUpload)
	return photo, entry, true
}

// HidePhoto flips visibility off for one photo. No ledger entry: earnings
// already attributed stay attributed. No-op if the photo is missing.
func (s *Store) HidePhoto(accountID, photoID string) bool {
	found := false
	ok := s.mutate(accountID, func(acc *models.Account) bool {
		for i := range acc.Photos {
			if acc.Photos[i].ID == photoID {
				acc.Photos[i].IsVisible = false
				found = true
				return true
			}
		}
		return false
	})
	if ok && found {
		s.log.Info("photo_hidden", "account_id", accountID, "photo_id", photoID)
	}
	return ok && found
}

// Withdraw succeeds only if amount <= the balance computed at call time.
// The API layer pre-checks the minimum threshold and sufficiency, but the
// invariant is defended here too so the mutator is safe to call directly.
// No partial effects on failure.
func (s *Store) Withdraw(accountID string, amount float64, method string) bool {
	if amount <= 0 {
		return false
	}

	accepted := false
	ok := s.mutate(accountID, func(acc *models.Account) bool {
		if amount > ComputeStats(*acc).Balance {
			return false
		}
		acc.WithdrawalsTotal += amount
		entry := newHistoryItem(models.HistoryWithdraw, amount, models.CurrencyUnit, method, time.Now())
		acc.History = append([]models.HistoryItem{entry}, acc.History...)
		accepted = true
		return true
	})
	if !ok {
		return false
	}

	if accepted {
		s.log.Info("withdraw_completed", "account_id", accountID, "amount", amount, "method", method)
	} else {
		s.log.Info("withdraw_rejected", "account_id", accountID, "amount", amount)
	}
	return accepted
}

// Redeem credits the parsed data magnitude and appends the redeem entry.
// It always succeeds for a known account; a zero parse is a valid event,
// not an error.
func (s *Store) Redeem(accountID, payload string) (models.HistoryItem, bool) {
	amount := ParseDataAmount(payload)
	entry := newHistoryItem(models.HistoryRedeem, amount, models.DataUnit, "", time.Now())

	ok := s.mutate(accountID, func(acc *models.Account) bool {
		acc.TotalData += amount
		acc.History = append([]models.HistoryItem{entry}, acc.History...)
		return true
	})
	if !ok {
		return models.HistoryItem{}, false
	}

	s.log.Info("redeem_recorded", "account_id", accountID, "amount", amount, "unit", models.DataUnit)
	return entry, true
}

// GrowEngagement applies fn to every photo of every account, visible or
// hidden, as one atomic pass. The simulator is its only caller; fn must be
// additive so ticks commute.
func (s *Store) GrowEngagement(fn func(models.Photo) models.Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		old := s.accounts[id]
		if len(old.Photos) == 0 {
			continue
		}
		next := cloneAccount(*old)
		for i := range next.Photos {
			next.Photos[i] = fn(next.Photos[i])
		}
		s.accounts[id] = &next
	}
}

// mutate runs fn against a cloned snapshot of the account and swaps it in
// only when fn reports a change. Unknown ids are a silent no-op; the caller
// decides how loud to be about that.
func (s *Store) mutate(accountID string, fn func(*models.Account) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.accounts[accountID]
	if !ok {
		return false
	}

	next := cloneAccount(*old)
	if !fn(&next) {
		return true
	}
	s.accounts[accountID] = &next
	return true
}

func newHistoryItem(t models.HistoryType, amount float64, unit, method string, ts time.Time) models.HistoryItem {
	return models.HistoryItem{
		ID:        uuid.NewString(),
		Type:      t,
		Amount:    amount,
		Unit:      unit,
		Timestamp: ts,
		Status:    models.StatusCompleted,
		Method:    method,
	}
}

func cloneAccount(acc models.Account) models.Account {
	photos := make([]models.Photo, len(acc.Photos))
	copy(photos, acc.Photos)
	history := make([]models.HistoryItem, len(acc.History))
	copy(history, acc.History)
	acc.Photos = photos
	acc.History = history
	return acc
}
