package ui

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/storycrafter/storycrafter-agent/internal/story"
)

type Tray struct {
	session *story.Session
	store   *story.Store
	logger  *slog.Logger

	statusItem  *systray.MenuItem
	libraryItem *systray.MenuItem

	mu sync.Mutex

	onQuit func()
	stopCh chan struct{}
}

type TrayConfig struct {
	Session *story.Session
	Store   *story.Store
	Logger  *slog.Logger
	OnQuit  func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		session: cfg.Session,
		store:   cfg.Store,
		logger:  cfg.Logger,
		onQuit:  cfg.OnQuit,
		stopCh:  make(chan struct{}),
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("StoryCrafter")
	systray.SetTooltip("StoryCrafter Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.libraryItem = systray.AddMenuItem("Library: 0 projects, 0 ideas", "Stored projects and saved ideas")
	t.libraryItem.Disable()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit StoryCrafter Agent")

	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.refresh()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			case <-t.stopCh:
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	close(t.stopCh)
	t.logger.Info("system tray exiting")
}

func (t *Tray) refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.session.Snapshot()

	status := "Idle"
	if snap.Loading {
		status = "Generating..."
	} else if snap.LastError != "" {
		status = "Error"
	}
	t.statusItem.SetTitle("Status: " + status)
	t.libraryItem.SetTitle(fmt.Sprintf("Library: %d projects, %d ideas",
		snap.ProjectCount, snap.SavedIdeaCount))
}

func (t *Tray) Quit() {
	systray.Quit()
}
