package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iliyamo/cinema-checkout/internal/checkout"
	"github.com/iliyamo/cinema-checkout/internal/model"
)

// fakeFlow is a scripted checkout. Submit and GoBack record their calls
// and swap in the snapshot the test prepared.
type fakeFlow struct {
	snap    checkout.Snapshot
	after   *checkout.Snapshot
	updates chan struct{}

	submitted []model.Customer
	submitErr error
	goBacks   int
	goBackErr error
}

func newFakeFlow(snap checkout.Snapshot) *fakeFlow {
	return &fakeFlow{snap: snap, updates: make(chan struct{}, 1)}
}

func (f *fakeFlow) Submit(c model.Customer) error {
	f.submitted = append(f.submitted, c)
	if f.after != nil {
		f.snap = *f.after
	}
	return f.submitErr
}

func (f *fakeFlow) GoBack() error {
	f.goBacks++
	return f.goBackErr
}

func (f *fakeFlow) Current() checkout.Snapshot { return f.snap }
func (f *fakeFlow) Updates() <-chan struct{}   { return f.updates }

func activeSnapshot() checkout.Snapshot {
	return checkout.Snapshot{
		Phase: checkout.PhaseActive,
		Session: &model.Session{
			MovieTitle: "Dune: Part Two",
			LongDate:   "viernes, 16 de octubre de 2026",
			Time:       "20:30",
			RoomName:   "Sala 3",
		},
		Seats: []model.Seat{
			{ID: "11", Row: "F", Number: 7},
			{ID: "12", Row: "F", Number: 8},
		},
		Remaining: 4 * time.Minute,
		CanSubmit: true,
	}
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return updated.(Model)
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: k})
	return updated.(Model), cmd
}

func TestModelSubmitsTypedCustomer(t *testing.T) {
	flow := newFakeFlow(activeSnapshot())
	m := NewModel(flow, nil, DefaultKeyMap, DefaultTheme)

	m = typeText(t, m, "Ana García")
	m, _ = press(t, m, tea.KeyTab)
	m = typeText(t, m, "ana@example.com")
	m, _ = press(t, m, tea.KeyTab)
	m = typeText(t, m, "600 123 456")
	m, _ = press(t, m, tea.KeyEnter)

	if len(flow.submitted) != 1 {
		t.Fatalf("submitted %d times, want 1", len(flow.submitted))
	}
	want := model.Customer{Name: "Ana García", Email: "ana@example.com", Phone: "600 123 456"}
	if got := flow.submitted[0]; got != want {
		t.Errorf("customer = %+v, want %+v", got, want)
	}
}

func TestModelFocusWraps(t *testing.T) {
	m := NewModel(newFakeFlow(activeSnapshot()), nil, DefaultKeyMap, DefaultTheme)

	m, _ = press(t, m, tea.KeyShiftTab)
	if m.focus != fieldPhone {
		t.Fatalf("focus after shift+tab = %d, want phone", m.focus)
	}
	m, _ = press(t, m, tea.KeyTab)
	if m.focus != fieldName {
		t.Fatalf("focus after tab = %d, want name", m.focus)
	}
	if !m.inputs[fieldName].Focused() || m.inputs[fieldPhone].Focused() {
		t.Error("only the name input should be focused")
	}
}

func TestModelFocusesInvalidField(t *testing.T) {
	flow := newFakeFlow(activeSnapshot())
	flow.submitErr = &checkout.ValidationError{Field: "email", Message: checkout.MsgInvalidEmail}
	after := activeSnapshot()
	after.Message = checkout.MsgInvalidEmail
	flow.after = &after

	m := NewModel(flow, nil, DefaultKeyMap, DefaultTheme)
	m = typeText(t, m, "Ana")
	m, _ = press(t, m, tea.KeyEnter)

	if m.focus != fieldEmail {
		t.Errorf("focus = %d, want email", m.focus)
	}
	if !strings.Contains(m.View(), checkout.MsgInvalidEmail) {
		t.Error("view should show the validation message")
	}
}

func TestModelIgnoresSubmitWhenDisabled(t *testing.T) {
	snap := activeSnapshot()
	snap.CanSubmit = false
	snap.Attempt = checkout.Attempt{ID: "a1", State: checkout.AttemptInFlight}
	flow := newFakeFlow(snap)
	m := NewModel(flow, nil, DefaultKeyMap, DefaultTheme)

	m, _ = press(t, m, tea.KeyEnter)

	if len(flow.submitted) != 0 {
		t.Errorf("submitted %d times while disabled", len(flow.submitted))
	}
	if !strings.Contains(m.View(), "Processing purchase") {
		t.Error("view should show the in-flight indicator")
	}
}

func TestModelRendersSessionAndCountdown(t *testing.T) {
	m := NewModel(newFakeFlow(activeSnapshot()), nil, DefaultKeyMap, DefaultTheme)
	view := m.View()

	for _, want := range []string{"Dune: Part Two", "viernes, 16 de octubre de 2026", "20:30", "Sala 3", "00:04:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelRendersLoadingPlaceholders(t *testing.T) {
	snap := activeSnapshot()
	snap.Session = nil
	snap.Seats = nil
	snap.SessionLoading = true
	snap.SeatsLoading = true
	m := NewModel(newFakeFlow(snap), nil, DefaultKeyMap, DefaultTheme)
	view := m.View()

	if !strings.Contains(view, "Loading session") || !strings.Contains(view, "Loading seats") {
		t.Errorf("view should show both loading placeholders:\n%s", view)
	}
}

func TestModelExpiredGoesBack(t *testing.T) {
	snap := activeSnapshot()
	snap.Phase = checkout.PhaseExpired
	snap.CanSubmit = false
	snap.Remaining = 0
	flow := newFakeFlow(snap)
	m := NewModel(flow, nil, DefaultKeyMap, DefaultTheme)

	if !strings.Contains(m.View(), checkout.MsgHoldExpired) {
		t.Fatal("view should show the expiry overlay")
	}

	m = typeText(t, m, "x")
	if flow.goBacks != 0 || m.inputs[fieldName].Value() != "" {
		t.Fatal("typing must be ignored once expired")
	}
	m, _ = press(t, m, tea.KeyEnter)
	if flow.goBacks != 1 {
		t.Errorf("GoBack called %d times, want 1", flow.goBacks)
	}
	if len(flow.submitted) != 0 {
		t.Error("enter on the overlay must not submit")
	}
}

func TestModelGoBackOnClosedFlowQuits(t *testing.T) {
	snap := activeSnapshot()
	snap.Phase = checkout.PhaseExpired
	snap.CanSubmit = false
	flow := newFakeFlow(snap)
	flow.goBackErr = checkout.ErrFlowClosed
	m := NewModel(flow, nil, DefaultKeyMap, DefaultTheme)

	m, cmd := press(t, m, tea.KeyEnter)
	if !errors.Is(m.Err(), checkout.ErrFlowClosed) {
		t.Fatalf("Err() = %v, want ErrFlowClosed", m.Err())
	}
	if cmd == nil {
		t.Fatal("a closed flow should quit the program")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("command should be tea.Quit")
	}
	if !strings.Contains(m.View(), checkout.ErrFlowClosed.Error()) {
		t.Error("view should show the error")
	}
}

func TestModelSucceededView(t *testing.T) {
	snap := activeSnapshot()
	snap.Phase = checkout.PhaseSucceeded
	snap.CanSubmit = false
	snap.Notice = checkout.MsgPurchaseSucceeded
	snap.LoaderVisible = true
	snap.Attempt = checkout.Attempt{
		ID:           "a1",
		State:        checkout.AttemptSucceeded,
		Result:       &model.ReservationResult{ID: "981"},
		DocumentPath: "/tmp/entrada_981.pdf",
	}
	m := NewModel(newFakeFlow(snap), nil, DefaultKeyMap, DefaultTheme)
	view := m.View()

	for _, want := range []string{checkout.MsgPurchaseSucceeded, "Reservation 981", "/tmp/entrada_981.pdf", "Redirecting"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelQuitsOnNavigation(t *testing.T) {
	nav := NewChanNavigator()
	m := NewModel(newFakeFlow(activeSnapshot()), nav.C(), DefaultKeyMap, DefaultTheme)

	nav.Home()
	msg := waitForNavigation(nav.C())()
	updated, cmd := m.Update(msg)

	if got := updated.(Model).Destination(); got != Home {
		t.Errorf("destination = %v, want home", got)
	}
	if cmd == nil {
		t.Fatal("navigation should quit the program")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("command should be tea.Quit")
	}
}

func TestModelRefreshesOnUpdate(t *testing.T) {
	flow := newFakeFlow(activeSnapshot())
	m := NewModel(flow, nil, DefaultKeyMap, DefaultTheme)

	next := activeSnapshot()
	next.Remaining = 45 * time.Second
	flow.snap = next
	flow.updates <- struct{}{}

	msg := waitForUpdate(flow.Updates())()
	updated, cmd := m.Update(msg)
	if cmd == nil {
		t.Error("model should keep waiting for updates")
	}
	if !strings.Contains(updated.(Model).View(), "00:00:45") {
		t.Error("view should show the refreshed countdown")
	}
}

func TestChanNavigatorFirstWins(t *testing.T) {
	nav := NewChanNavigator()
	nav.SeatSelection()
	nav.Home()

	if got := <-nav.C(); got != SeatSelection {
		t.Errorf("destination = %v, want seat selection", got)
	}
	select {
	case d := <-nav.C():
		t.Errorf("unexpected second destination %v", d)
	default:
	}
}
