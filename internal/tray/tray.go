package tray

import (
	"fmt"
	"sync"

	"github.com/ankityadav/sitewatch/internal/monitor"
	"github.com/ankityadav/sitewatch/internal/storage"
	"github.com/getlantern/systray"
)

type TrayApp struct {
	db       *storage.Database
	mon      *monitor.Monitor
	mu       sync.Mutex
	stopChan chan struct{}
	mStatus  *systray.MenuItem
	mSites   []*systray.MenuItem
}

func New(db *storage.Database) *TrayApp {
	return &TrayApp{
		db:       db,
		stopChan: make(chan struct{}),
	}
}

// SetMonitor hands the tray the shared monitor so Check Now can
// trigger an extra cycle. Must be called before Run.
func (t *TrayApp) SetMonitor(mon *monitor.Monitor) {
	t.mon = mon
}

// Run blocks until the tray is quit.
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetIcon(grayIcon)
	systray.SetTitle("")
	systray.SetTooltip("Sitewatch")

	t.mu.Lock()
	t.mStatus = systray.AddMenuItem("● Waiting for first check", "Current status")
	t.mStatus.Disable()
	t.mu.Unlock()

	systray.AddSeparator()

	mHeader := systray.AddMenuItem("── Sites ──", "")
	mHeader.Disable()

	t.Refresh()

	systray.AddSeparator()

	mCheck := systray.AddMenuItem("↻ Check Now", "Check all sites immediately")

	systray.AddSeparator()

	mQuit := systray.AddMenuItem("Quit Sitewatch", "Stop monitoring and exit")

	go func() {
		for {
			select {
			case <-mCheck.ClickedCh:
				if t.mon != nil {
					t.mon.CheckNow()
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			case <-t.stopChan:
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	close(t.stopChan)
}

// Refresh redraws the menu from the store. It is the monitor's change
// signal sink, and also runs once at startup.
func (t *TrayApp) Refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mStatus == nil {
		return
	}

	sites, err := t.db.ListSites()
	if err != nil {
		return
	}

	for i, site := range sites {
		label := fmt.Sprintf("%s %s", statusIcon(site.Status), site.URL)
		if i < len(t.mSites) {
			t.mSites[i].SetTitle(label)
			t.mSites[i].Show()
		} else {
			item := systray.AddMenuItem(label, site.URL)
			item.Disable()
			t.mSites = append(t.mSites, item)
		}
	}
	for i := len(sites); i < len(t.mSites); i++ {
		t.mSites[i].Hide()
	}

	var upCount, downCount int
	for _, site := range sites {
		switch site.Status {
		case storage.StatusUp:
			upCount++
		case storage.StatusDown:
			downCount++
		}
	}

	switch {
	case downCount > 0:
		systray.SetIcon(redIcon)
		msg := fmt.Sprintf("%d down, %d up", downCount, upCount)
		systray.SetTooltip("Sitewatch - " + msg)
		t.mStatus.SetTitle("✗ " + msg)
	case upCount > 0:
		systray.SetIcon(greenIcon)
		msg := fmt.Sprintf("All %d sites up", upCount)
		systray.SetTooltip("Sitewatch - " + msg)
		t.mStatus.SetTitle("● " + msg)
	default:
		systray.SetIcon(grayIcon)
		systray.SetTooltip("Sitewatch - No sites checked yet")
		t.mStatus.SetTitle("● No sites checked yet")
	}
}

func statusIcon(status string) string {
	switch status {
	case storage.StatusUp:
		return "✓"
	case storage.StatusDown:
		return "✗"
	default:
		return "○"
	}
}
