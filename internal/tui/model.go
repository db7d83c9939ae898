// Package tui renders a checkout in the terminal with bubbletea. The
// Model only draws snapshots of a checkout flow and forwards user
// actions to it; every rule about holds, submissions and outcomes lives
// in the checkout package.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iliyamo/cinema-checkout/internal/checkout"
	"github.com/iliyamo/cinema-checkout/internal/model"
)

// warnBelow is the remaining hold under which the countdown turns to the
// warning color.
const warnBelow = time.Minute

// Flow is the part of a checkout the UI drives. *checkout.Flow
// satisfies it.
type Flow interface {
	Submit(c model.Customer) error
	GoBack() error
	Current() checkout.Snapshot
	Updates() <-chan struct{}
}

// Form fields, in focus order.
const (
	fieldName = iota
	fieldEmail
	fieldPhone
	fieldCount
)

// flowUpdateMsg reports that the flow published a new snapshot.
type flowUpdateMsg struct{}

// navigateMsg carries the destination chosen by the flow.
type navigateMsg Destination

// Model is the bubbletea model of the checkout screen.
type Model struct {
	flow   Flow
	nav    <-chan Destination
	keys   KeyMap
	styles styles

	inputs  [fieldCount]textinput.Model
	focus   int
	spinner spinner.Model

	snap        checkout.Snapshot
	destination Destination
	err         error
	width       int
}

// NewModel builds the screen for flow. nav delivers the navigation
// requests the flow makes; the program quits when one arrives.
func NewModel(flow Flow, nav <-chan Destination, keys KeyMap, theme Theme) Model {
	st := newStyles(theme)

	placeholders := [fieldCount]string{"Full name", "name@example.com", "600 123 456"}
	limits := [fieldCount]int{120, 190, 32}
	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = limits[i]
		ti.Width = 40
		ti.PromptStyle = lipgloss.NewStyle().Foreground(theme.Accent)
		inputs[i] = ti
	}
	inputs[fieldName].Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	return Model{
		flow:    flow,
		nav:     nav,
		keys:    keys,
		styles:  st,
		inputs:  inputs,
		spinner: sp,
		snap:    flow.Current(),
	}
}

// Destination is where the customer was sent when the program ended.
func (m Model) Destination() Destination { return m.destination }

// Err is the last error returned by the flow for a user action that has
// no other place on screen.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForUpdate(m.flow.Updates()), waitForNavigation(m.nav))
}

// waitForUpdate blocks until the flow publishes, then delivers a
// flowUpdateMsg. Signals coalesce, so the model always reads the latest
// snapshot.
func waitForUpdate(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return flowUpdateMsg{}
	}
}

func waitForNavigation(ch <-chan Destination) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		d, ok := <-ch
		if !ok {
			return nil
		}
		return navigateMsg(d)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case flowUpdateMsg:
		m.refresh()
		return m, waitForUpdate(m.flow.Updates())

	case navigateMsg:
		m.destination = Destination(msg)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.snap.Phase {
	case checkout.PhaseExpired:
		if key.Matches(msg, m.keys.Back) {
			if err := m.flow.GoBack(); err != nil {
				m.err = err
				// A closed flow can no longer navigate.
				if errors.Is(err, checkout.ErrFlowClosed) {
					return m, tea.Quit
				}
			}
		}
		return m, nil
	case checkout.PhaseSucceeded:
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.submit()
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) submit() {
	if !m.snap.CanSubmit {
		return
	}
	err := m.flow.Submit(m.customer())
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		if f, ok := fieldFor(verr.Field); ok {
			m.setFocus(f)
		}
	}
	m.refresh()
}

// refresh pulls the latest snapshot and blurs the form once the checkout
// is no longer active.
func (m *Model) refresh() {
	m.snap = m.flow.Current()
	if m.snap.Phase != checkout.PhaseActive || m.snap.Closed {
		for i := range m.inputs {
			m.inputs[i].Blur()
		}
	}
}

func (m *Model) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m Model) customer() model.Customer {
	return model.Customer{
		Name:  m.inputs[fieldName].Value(),
		Email: m.inputs[fieldEmail].Value(),
		Phone: m.inputs[fieldPhone].Value(),
	}
}

func fieldFor(name string) (int, bool) {
	switch name {
	case "name":
		return fieldName, true
	case "email":
		return fieldEmail, true
	case "phone":
		return fieldPhone, true
	}
	return 0, false
}

// View implements tea.Model.
func (m Model) View() string {
	st := m.styles
	var b strings.Builder

	b.WriteString(st.title.Render("Velvet Cinema · Checkout"))
	b.WriteString("  ")
	b.WriteString(m.countdownView())
	b.WriteString("\n\n")

	b.WriteString(st.panel.Render(m.sessionView() + "\n\n" + m.seatsView()))
	b.WriteString("\n\n")

	switch m.snap.Phase {
	case checkout.PhaseExpired:
		b.WriteString(st.overlay.Render(
			st.warning.Render(checkout.MsgHoldExpired) + "\n\n" +
				st.faint.Render("Press enter to choose your seats again.")))
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(st.err.Render(m.err.Error()))
			b.WriteString("\n")
		}
		return b.String()
	case checkout.PhaseSucceeded:
		b.WriteString(m.successView())
		return b.String()
	}

	labels := [fieldCount]string{"Name", "Email", "Phone"}
	for i, in := range m.inputs {
		b.WriteString(st.label.Render(labels[i]))
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.buttonView())
	b.WriteString("\n")

	if m.snap.Message != "" {
		b.WriteString("\n")
		b.WriteString(st.err.Render(m.snap.Message))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(st.faint.Render(helpLine(m.keys.Next, m.keys.Submit, m.keys.Quit)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) countdownView() string {
	text := "Time left " + checkout.FormatRemaining(m.snap.Remaining)
	switch {
	case m.snap.Phase == checkout.PhaseSucceeded:
		return m.styles.success.Render("Paid")
	case m.snap.Remaining < warnBelow:
		return m.styles.warning.Render(text)
	}
	return m.styles.countdown.Render(text)
}

func (m Model) sessionView() string {
	st := m.styles
	switch s := m.snap.Session; {
	case m.snap.SessionLoading:
		return m.spinner.View() + st.faint.Render(" Loading session...")
	case s == nil:
		return st.faint.Render("Session details unavailable")
	default:
		return st.text.Bold(true).Render(s.MovieTitle) + "\n" +
			st.text.Render(s.LongDate+" · "+s.Time) + "\n" +
			st.faint.Render(s.RoomName)
	}
}

func (m Model) seatsView() string {
	st := m.styles
	switch {
	case m.snap.SeatsLoading:
		return m.spinner.View() + st.faint.Render(" Loading seats...")
	case len(m.snap.Seats) == 0:
		return st.faint.Render("Seat details unavailable")
	}
	lines := make([]string, 0, len(m.snap.Seats))
	for _, s := range m.snap.Seats {
		lines = append(lines, st.text.Render("• "+s.Label()))
	}
	return strings.Join(lines, "\n")
}

func (m Model) buttonView() string {
	if m.snap.Attempt.State == checkout.AttemptInFlight {
		return m.spinner.View() + m.styles.text.Render(" Processing purchase...")
	}
	if !m.snap.CanSubmit {
		return m.styles.disabled.Render("Purchase")
	}
	return m.styles.button.Render("Purchase")
}

func (m Model) successView() string {
	st := m.styles
	var b strings.Builder
	b.WriteString(st.success.Render(m.snap.Notice))
	b.WriteString("\n")
	a := m.snap.Attempt
	if a.Result != nil && !a.Result.ID.Empty() {
		b.WriteString(st.text.Render(fmt.Sprintf("Reservation %s", a.Result.ID)))
		b.WriteString("\n")
	}
	switch {
	case a.DocumentPath != "":
		b.WriteString(st.faint.Render("Ticket saved to " + a.DocumentPath))
	case a.DocumentErr != nil:
		b.WriteString(st.err.Render("Your ticket could not be downloaded; the purchase is still valid."))
	}
	b.WriteString("\n")
	if m.snap.LoaderVisible {
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + st.faint.Render(" Redirecting..."))
		b.WriteString("\n")
	}
	return b.String()
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
