package monitor

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ankityadav/sitewatch/internal/config"
	"github.com/ankityadav/sitewatch/internal/probe"
	"github.com/ankityadav/sitewatch/internal/storage"
)

// Store is the slice of the site store the cycle needs. The three
// write operations are idempotent and independently callable.
type Store interface {
	ListSites() ([]storage.Site, error)
	RecordDown(id uint) error
	RecordUp(id uint) error
	UpdateCheckedTime(id uint) error
}

type Prober interface {
	Probe(url string) probe.Result
}

type Gate interface {
	Available() bool
}

// Dispatcher delivers one notification. Implementations are
// best-effort and must not block a cycle on delivery failure.
type Dispatcher interface {
	Send(subject, body string)
}

// Monitor runs the check cycle: network gate, concurrent probes, state
// transitions, notifications, and a single batched change signal.
type Monitor struct {
	store       Store
	prober      Prober
	gate        Gate
	dispatchers []Dispatcher
	onChange    func()

	interval time.Duration
	inFlight atomic.Bool
	kick     chan struct{}
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New wires the cycle's collaborators. onChange is invoked at most
// once per cycle, after all sites settled, when anything was written;
// it may be nil.
func New(store Store, prober Prober, gate Gate, dispatchers []Dispatcher, onChange func()) *Monitor {
	return &Monitor{
		store:       store,
		prober:      prober,
		gate:        gate,
		dispatchers: dispatchers,
		onChange:    onChange,
		interval:    config.DefaultCheckInterval * time.Second,
		kick:        make(chan struct{}, 1),
		stopChan:    make(chan struct{}),
	}
}

// Start runs one cycle immediately, then keeps checking on the fixed
// interval until Stop.
func (m *Monitor) Start() {
	m.wg.Add(1)
	go m.run()
}

// Stop cancels the schedule and waits for a cycle already in flight to
// finish naturally.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
	m.wg.Wait()
}

// CheckNow requests an extra cycle outside the schedule. It never
// blocks; if a cycle is running or already requested, the request is
// dropped.
func (m *Monitor) CheckNow() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

func (m *Monitor) run() {
	defer m.wg.Done()

	m.runCycle()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.runCycle()
		case <-m.kick:
			m.runCycle()
		case <-m.stopChan:
			return
		}
	}
}

// runCycle is one full pass. A tick that lands while a cycle is in
// flight is dropped, not queued.
func (m *Monitor) runCycle() {
	if !m.inFlight.CompareAndSwap(false, true) {
		log.Printf("Previous check cycle still running, skipping this tick")
		return
	}
	defer m.inFlight.Store(false)

	if !m.gate.Available() {
		log.Printf("Network unavailable, skipping check cycle")
		return
	}

	sites, err := m.store.ListSites()
	if err != nil {
		log.Printf("Failed to list sites: %v", err)
		return
	}

	var wrote atomic.Bool
	var wg sync.WaitGroup

	for _, site := range sites {
		wg.Add(1)
		go func(site storage.Site) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Check of %s panicked: %v", site.URL, r)
				}
			}()
			if m.checkSite(site) {
				wrote.Store(true)
			}
		}(site)
	}
	wg.Wait()

	if wrote.Load() && m.onChange != nil {
		m.onChange()
	}
}

// checkSite probes one site and applies the transition. It reports
// whether anything was persisted. Notifications go out only on entry
// into down and on recovery, and only once the transition is stored.
func (m *Monitor) checkSite(site storage.Site) bool {
	res := m.prober.Probe(site.URL)

	newStatus := storage.StatusUp
	if !res.Up {
		newStatus = storage.StatusDown
	}

	if newStatus == site.Status {
		if err := m.store.UpdateCheckedTime(site.ID); err != nil {
			log.Printf("Failed to update checked time for %s: %v", site.URL, err)
			return false
		}
		return true
	}

	if newStatus == storage.StatusDown {
		if err := m.store.RecordDown(site.ID); err != nil {
			log.Printf("Failed to record %s as down: %v", site.URL, err)
			return false
		}
		m.dispatch(downMessage(site.URL, res.Reason))
		return true
	}

	if err := m.store.RecordUp(site.ID); err != nil {
		log.Printf("Failed to record %s as up: %v", site.URL, err)
		return false
	}
	if site.Status == storage.StatusDown {
		m.dispatch(recoveryMessage(site))
	}
	return true
}

// dispatch fans one message out to every channel, awaited within the
// calling site's goroutine.
func (m *Monitor) dispatch(subject, body string) {
	for _, d := range m.dispatchers {
		d.Send(subject, body)
	}
}

func downMessage(url, reason string) (string, string) {
	subject := fmt.Sprintf("Site DOWN: %s", url)
	body := fmt.Sprintf("%s is not reachable.\n\nReason: %s\nDetected: %s\n",
		url, reason, time.Now().Format(time.RFC1123))
	return subject, body
}

func recoveryMessage(site storage.Site) (string, string) {
	subject := fmt.Sprintf("Site UP: %s", site.URL)
	body := fmt.Sprintf("%s is reachable again.\n\nRecovered: %s\n",
		site.URL, time.Now().Format(time.RFC1123))
	if site.LastDownAt != nil {
		body += fmt.Sprintf("Was down since: %s\n", site.LastDownAt.Format(time.RFC1123))
	}
	return subject, body
}
