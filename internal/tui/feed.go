// Package tui provides the interactive surfaces of crewctl: the live
// activity feed and the integration connect dialog.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crewdeck/crewctl/internal/cache"
	"github.com/crewdeck/crewctl/internal/platform"
	"github.com/crewdeck/crewctl/internal/resource"
)

// feedUpdateMsg carries one polled activity listing.
type feedUpdateMsg struct {
	list *platform.ActivityList
}

// feedClosedMsg signals that the poll channel closed.
type feedClosedMsg struct{}

// cacheEventMsg carries one cache notification.
type cacheEventMsg struct {
	event cache.Event
	ok    bool
}

// FeedModel renders a near-real-time activity stream. The poll it subscribes
// to is owned by the model's lifetime: quitting cancels the poll, so no
// refresh continues unobserved.
type FeedModel struct {
	updates <-chan *platform.ActivityList
	cancel  context.CancelFunc

	// Cache notifications: a stale-while-revalidate refresh landed for the
	// feed's key between poll ticks, so the view re-reads it early.
	store       *cache.Cache
	key         cache.Key
	events      <-chan cache.Event
	unsubscribe func()

	spinner     spinner.Model
	list        *platform.ActivityList
	lastUpdated time.Time
	interval    time.Duration
	filter      platform.ActivityFilter

	width    int
	height   int
	quitting bool

	styles Styles
}

// NewFeed starts polling the activity stream and returns a model displaying
// it. The model also subscribes to the result cache so refreshes landing
// between poll ticks show immediately.
func NewFeed(activity *resource.Activity, store *cache.Cache, interval time.Duration, filter platform.ActivityFilter) FeedModel {
	ctx, cancel := context.WithCancel(context.Background())
	events, unsubscribe := store.Subscribe()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	return FeedModel{
		updates:     activity.Poll(ctx, interval, filter),
		cancel:      cancel,
		store:       store,
		key:         cache.ListKey(resource.ActivityResource, filter.Query()),
		events:      events,
		unsubscribe: unsubscribe,
		spinner:     s,
		interval:    interval,
		filter:      filter,
		styles:      DefaultStyles(),
	}
}

// Init starts the spinner and the first channel reads (required by Bubble Tea)
func (m FeedModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate(), m.waitForEvent())
}

// waitForUpdate reads one polled listing off the channel.
func (m FeedModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		list, ok := <-m.updates
		if !ok {
			return feedClosedMsg{}
		}
		return feedUpdateMsg{list: list}
	}
}

// waitForEvent reads one cache notification off the subscription.
func (m FeedModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		return cacheEventMsg{event: event, ok: ok}
	}
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			m.cancel()
			m.unsubscribe()
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case feedUpdateMsg:
		m.list = msg.list
		m.lastUpdated = time.Now()
		return m, m.waitForUpdate()

	case feedClosedMsg:
		m.quitting = true
		m.unsubscribe()
		return m, tea.Quit

	case cacheEventMsg:
		if !msg.ok {
			return m, nil
		}
		if msg.event.Type == cache.EventUpdated && msg.event.Key == m.key {
			if value, ok, _ := m.store.Get(m.key); ok {
				if list, ok := value.(*platform.ActivityList); ok {
					m.list = list
					m.lastUpdated = time.Now()
				}
			}
		}
		return m, m.waitForEvent()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the feed (required by Bubble Tea)
func (m FeedModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Activity Feed"))
	b.WriteString("\n")

	scope := "all workers"
	if m.filter.EmployeeID != "" {
		scope = "worker " + m.filter.EmployeeID
	}
	b.WriteString(m.styles.Subtitle.Render(
		fmt.Sprintf("%s · refreshing every %s", scope, m.interval)))
	b.WriteString("\n\n")

	if m.list == nil {
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.Muted.Render(" waiting for first update..."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderActivities())
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(
			fmt.Sprintf("%d events · updated %s", m.list.TotalCount,
				m.lastUpdated.Format("15:04:05"))))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("q: quit"))
	return b.String()
}

func (m FeedModel) renderActivities() string {
	if len(m.list.Activities) == 0 {
		return m.styles.Muted.Render("No activity yet.")
	}

	var b strings.Builder
	for _, event := range m.list.Activities {
		b.WriteString(m.styles.Timestamp.Render(event.OccurredAt.Local().Format("15:04:05")))
		b.WriteString("  ")

		eventStyle := m.styles.Event
		if event.Importance >= 4 {
			eventStyle = m.styles.Important
		}
		b.WriteString(eventStyle.Render(event.EventType))
		b.WriteString("  ")
		b.WriteString(event.Summary)
		b.WriteString("\n")
	}
	return b.String()
}
