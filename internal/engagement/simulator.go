package engagement

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"snapwallet/internal/models"
	"snapwallet/internal/wallet"
)

// Simulator grows social counters on every photo of every account on a fixed
// interval, independent of user action. It never emits ledger entries: likes
// are an earnings input computed lazily by the stats calculator, not an
// immediately-ledgered event.
type Simulator struct {
	log      *slog.Logger
	store    *wallet.Store
	params   Params
	interval time.Duration
	rng      *rand.Rand
	notify   func() // invoked after each tick; may be nil

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewSimulator builds a stopped simulator. notify is called after every tick
// so live consumers (the websocket hub) can push fresh stats; pass nil if
// nobody listens. The random source is injected so tests can seed it.
func NewSimulator(log *slog.Logger, store *wallet.Store, interval time.Duration, params Params, rng *rand.Rand, notify func()) *Simulator {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{
		log:      log,
		store:    store,
		params:   params,
		interval: interval,
		rng:      rng,
		notify:   notify,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start runs the tick loop until Stop is called.
func (s *Simulator) Start() {
	go s.run()
	s.log.Info("engagement_simulator_started", "interval", s.interval.String())
}

func (s *Simulator) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	<-s.doneChan
	s.log.Info("engagement_simulator_stopped")
}

func (s *Simulator) run() {
	defer close(s.doneChan)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Tick()
		case <-s.stopChan:
			return
		}
	}
}

// Tick applies one pass of growth across the whole collection as a single
// atomic store mutation. Safe to call directly from tests; the rng is only
// ever touched from one goroutine at a time.
func (s *Simulator) Tick() {
	s.store.GrowEngagement(func(p models.Photo) models.Photo {
		return Grow(p, s.rng, s.params)
	})
	s.log.Debug("engagement_tick")

	if s.notify != nil {
		s.notify()
	}
}
