package monitor

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ankityadav/sitewatch/internal/probe"
	"github.com/ankityadav/sitewatch/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu         sync.Mutex
	sites      []storage.Site
	listErr    error
	writeErrs  map[uint]error
	downs      []uint
	ups        []uint
	checks     []uint
}

func (s *fakeStore) ListSites() ([]storage.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sites, s.listErr
}

func (s *fakeStore) writeErr(id uint) error {
	if s.writeErrs == nil {
		return nil
	}
	return s.writeErrs[id]
}

func (s *fakeStore) RecordDown(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeErr(id); err != nil {
		return err
	}
	s.downs = append(s.downs, id)
	return nil
}

func (s *fakeStore) RecordUp(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeErr(id); err != nil {
		return err
	}
	s.ups = append(s.ups, id)
	return nil
}

func (s *fakeStore) UpdateCheckedTime(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeErr(id); err != nil {
		return err
	}
	s.checks = append(s.checks, id)
	return nil
}

type fakeProber struct {
	mu      sync.Mutex
	results map[string]probe.Result
	probed  []string
}

func (p *fakeProber) Probe(url string) probe.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probed = append(p.probed, url)
	if r, ok := p.results[url]; ok {
		return r
	}
	return probe.Result{Up: true}
}

type fakeGate struct {
	available bool
}

func (g *fakeGate) Available() bool { return g.available }

type message struct {
	subject string
	body    string
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []message
}

func (d *fakeDispatcher) Send(subject, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, message{subject: subject, body: body})
}

func (d *fakeDispatcher) messages() []message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]message(nil), d.sent...)
}

type signalCounter struct {
	mu    sync.Mutex
	count int
}

func (c *signalCounter) fire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

func (c *signalCounter) fired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func site(id uint, url, status string) storage.Site {
	return storage.Site{ID: id, URL: url, Status: status}
}

func newTestMonitor(store *fakeStore, prober *fakeProber, gate *fakeGate, d *fakeDispatcher, c *signalCounter) *Monitor {
	var dispatchers []Dispatcher
	if d != nil {
		dispatchers = []Dispatcher{d}
	}
	var onChange func()
	if c != nil {
		onChange = c.fire
	}
	return New(store, prober, gate, dispatchers, onChange)
}

func TestFirstResultUpRecordsWithoutNotifying(t *testing.T) {
	store := &fakeStore{sites: []storage.Site{site(1, "a.com", storage.StatusUnknown)}}
	dispatcher := &fakeDispatcher{}
	signals := &signalCounter{}

	m := newTestMonitor(store, &fakeProber{}, &fakeGate{available: true}, dispatcher, signals)
	m.runCycle()

	assert.Equal(t, []uint{1}, store.ups)
	assert.Empty(t, store.downs)
	assert.Empty(t, dispatcher.messages())
	assert.Equal(t, 1, signals.fired())
}

func TestFirstResultDownNotifies(t *testing.T) {
	store := &fakeStore{sites: []storage.Site{site(1, "a.com", storage.StatusUnknown)}}
	prober := &fakeProber{results: map[string]probe.Result{
		"a.com": {Up: false, Reason: "No response received"},
	}}
	dispatcher := &fakeDispatcher{}

	m := newTestMonitor(store, prober, &fakeGate{available: true}, dispatcher, nil)
	m.runCycle()

	assert.Equal(t, []uint{1}, store.downs)
	require.Len(t, dispatcher.messages(), 1)
	assert.Contains(t, dispatcher.messages()[0].subject, "DOWN")
}

func TestDownTransitionNotifiesWithReason(t *testing.T) {
	store := &fakeStore{sites: []storage.Site{site(1, "a.com", storage.StatusUp)}}
	prober := &fakeProber{results: map[string]probe.Result{
		"a.com": {Up: false, Reason: "Status 503"},
	}}
	dispatcher := &fakeDispatcher{}
	signals := &signalCounter{}

	m := newTestMonitor(store, prober, &fakeGate{available: true}, dispatcher, signals)
	m.runCycle()

	assert.Equal(t, []uint{1}, store.downs)
	assert.Empty(t, store.checks)
	require.Len(t, dispatcher.messages(), 1)
	assert.Contains(t, dispatcher.messages()[0].subject, "a.com")
	assert.Contains(t, dispatcher.messages()[0].body, "Status 503")
	assert.Equal(t, 1, signals.fired())
}

func TestRecoveryNotifies(t *testing.T) {
	downSince := time.Now().Add(-time.Hour)
	s := site(1, "a.com", storage.StatusDown)
	s.LastDownAt = &downSince
	store := &fakeStore{sites: []storage.Site{s}}
	dispatcher := &fakeDispatcher{}

	m := newTestMonitor(store, &fakeProber{}, &fakeGate{available: true}, dispatcher, nil)
	m.runCycle()

	assert.Equal(t, []uint{1}, store.ups)
	require.Len(t, dispatcher.messages(), 1)
	assert.Contains(t, dispatcher.messages()[0].subject, "UP")
	assert.Contains(t, dispatcher.messages()[0].body, "Was down since")
}

func TestUnchangedStatusOnlyBumpsCheckedTime(t *testing.T) {
	store := &fakeStore{sites: []storage.Site{
		site(1, "a.com", storage.StatusUp),
		site(2, "b.com", storage.StatusDown),
	}}
	prober := &fakeProber{results: map[string]probe.Result{
		"b.com": {Up: false, Reason: "Status 500"},
	}}
	dispatcher := &fakeDispatcher{}
	signals := &signalCounter{}

	m := newTestMonitor(store, prober, &fakeGate{available: true}, dispatcher, signals)
	m.runCycle()

	assert.Empty(t, store.ups)
	assert.Empty(t, store.downs)
	assert.ElementsMatch(t, []uint{1, 2}, store.checks)
	assert.Empty(t, dispatcher.messages())
	assert.Equal(t, 1, signals.fired())
}

func TestGateDownSuppressesEverything(t *testing.T) {
	store := &fakeStore{sites: []storage.Site{site(1, "a.com", storage.StatusUp)}}
	prober := &fakeProber{results: map[string]probe.Result{
		"a.com": {Up: false, Reason: "No response received"},
	}}
	dispatcher := &fakeDispatcher{}
	signals := &signalCounter{}

	m := newTestMonitor(store, prober, &fakeGate{available: false}, dispatcher, signals)
	m.runCycle()

	assert.Empty(t, prober.probed)
	assert.Empty(t, store.downs)
	assert.Empty(t, store.ups)
	assert.Empty(t, store.checks)
	assert.Empty(t, dispatcher.messages())
	assert.Equal(t, 0, signals.fired())
}

func TestSignalFiresOncePerCycle(t *testing.T) {
	store := &fakeStore{sites: []storage.Site{
		site(1, "a.com", storage.StatusUp),
		site(2, "b.com", storage.StatusUp),
		site(3, "c.com", storage.StatusUp),
	}}
	prober := &fakeProber{results: map[string]probe.Result{
		"a.com": {Up: false, Reason: "Status 503"},
		"b.com": {Up: false, Reason: "Status 502"},
	}}
	signals := &signalCounter{}

	m := newTestMonitor(store, prober, &fakeGate{available: true}, &fakeDispatcher{}, signals)
	m.runCycle()

	assert.ElementsMatch(t, []uint{1, 2}, store.downs)
	assert.Equal(t, 1, signals.fired())
}

func TestEmptySiteListDoesNotSignal(t *testing.T) {
	signals := &signalCounter{}

	m := newTestMonitor(&fakeStore{}, &fakeProber{}, &fakeGate{available: true}, nil, signals)
	m.runCycle()

	assert.Equal(t, 0, signals.fired())
}

func TestSiteFailuresAreIsolated(t *testing.T) {
	store := &fakeStore{
		sites: []storage.Site{
			site(1, "a.com", storage.StatusUp),
			site(2, "b.com", storage.StatusUp),
		},
		writeErrs: map[uint]error{1: errors.New("disk full")},
	}
	prober := &fakeProber{results: map[string]probe.Result{
		"a.com": {Up: false, Reason: "Status 503"},
		"b.com": {Up: false, Reason: "No response received"},
	}}
	dispatcher := &fakeDispatcher{}
	signals := &signalCounter{}

	m := newTestMonitor(store, prober, &fakeGate{available: true}, dispatcher, signals)
	m.runCycle()

	// Site 1's write failed and suppressed its notification; site 2
	// still went through, and the one successful write still signals.
	assert.Equal(t, []uint{2}, store.downs)
	require.Len(t, dispatcher.messages(), 1)
	assert.Contains(t, dispatcher.messages()[0].subject, "b.com")
	assert.Equal(t, 1, signals.fired())
}

func TestOverlappingCycleIsDropped(t *testing.T) {
	store := &fakeStore{sites: []storage.Site{site(1, "a.com", storage.StatusUp)}}
	prober := &fakeProber{}
	signals := &signalCounter{}

	m := newTestMonitor(store, prober, &fakeGate{available: true}, nil, signals)

	m.inFlight.Store(true)
	m.runCycle()
	assert.Empty(t, prober.probed)
	assert.Equal(t, 0, signals.fired())

	m.inFlight.Store(false)
	m.runCycle()
	assert.Equal(t, []string{"a.com"}, prober.probed)
}

func TestStartRunsImmediateCycleAndStops(t *testing.T) {
	store := &fakeStore{sites: []storage.Site{site(1, "a.com", storage.StatusUnknown)}}
	signalled := make(chan struct{}, 4)

	m := New(store, &fakeProber{}, &fakeGate{available: true}, nil, func() {
		signalled <- struct{}{}
	})

	m.Start()
	select {
	case <-signalled:
	case <-time.After(2 * time.Second):
		t.Fatal("first cycle never ran")
	}
	m.Stop()

	assert.Equal(t, []uint{1}, store.ups)
}

func TestCheckNowTriggersExtraCycle(t *testing.T) {
	store := &fakeStore{sites: []storage.Site{site(1, "a.com", storage.StatusUp)}}
	signalled := make(chan struct{}, 4)

	m := New(store, &fakeProber{}, &fakeGate{available: true}, nil, func() {
		signalled <- struct{}{}
	})

	m.Start()
	select {
	case <-signalled:
	case <-time.After(2 * time.Second):
		t.Fatal("first cycle never ran")
	}

	m.CheckNow()
	select {
	case <-signalled:
	case <-time.After(2 * time.Second):
		t.Fatal("CheckNow cycle never ran")
	}
	m.Stop()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.GreaterOrEqual(t, len(store.checks), 2)
}

func TestDownMessageMentionsReason(t *testing.T) {
	subject, body := downMessage("a.com", "Status 503")
	assert.True(t, strings.Contains(subject, "a.com"))
	assert.True(t, strings.Contains(body, "Status 503"))
}
