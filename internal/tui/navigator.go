package tui

import "sync"

// Destination is where the checkout sent the customer when it ended.
type Destination int

const (
	StayHere Destination = iota
	Home
	SeatSelection
)

func (d Destination) String() string {
	switch d {
	case Home:
		return "home"
	case SeatSelection:
		return "seat selection"
	}
	return "checkout"
}

// ChanNavigator delivers navigation requests to the UI. The first request
// wins; later ones are dropped, so it never blocks the checkout loop.
type ChanNavigator struct {
	once sync.Once
	ch   chan Destination
}

// NewChanNavigator returns a navigator with a one-slot channel.
func NewChanNavigator() *ChanNavigator {
	return &ChanNavigator{ch: make(chan Destination, 1)}
}

func (n *ChanNavigator) Home()          { n.send(Home) }
func (n *ChanNavigator) SeatSelection() { n.send(SeatSelection) }

// C receives the destination.
func (n *ChanNavigator) C() <-chan Destination { return n.ch }

func (n *ChanNavigator) send(d Destination) {
	n.once.Do(func() { n.ch <- d })
}
