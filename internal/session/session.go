package session

import (
	"fmt"
	"sync"
	"time"

	"stockchart/internal/indicator"
	"stockchart/internal/quote"
)

// State is the lifecycle tag of a session. There is no way back to Empty.
type State int

const (
	Empty State = iota
	Loaded
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loaded:
		return "loaded"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "empty":
		*s = Empty
	case "loaded":
		*s = Loaded
	default:
		return fmt.Errorf("unknown session state %q", b)
	}
	return nil
}

// DefaultSelection is what a new session shows before the user picks anything.
var DefaultSelection = []indicator.Kind{indicator.SMA20}

// View is a point-in-time copy of a session, safe to hand to renderers.
type View struct {
	ID       string             `json:"id"`
	Version  uint64             `json:"version"`
	State    State              `json:"state"`
	Symbol   string             `json:"symbol,omitempty"`
	Start    string             `json:"start,omitempty"`
	End      string             `json:"end,omitempty"`
	Bars     []quote.PriceBar   `json:"bars"`
	Selected []indicator.Kind   `json:"selected"`
	Overlays []indicator.Series `json:"overlays"`
}

// Table rebuilds the price table behind the view.
func (v View) Table() quote.PriceTable {
	return quote.PriceTable{Symbol: v.Symbol, Bars: v.Bars}
}

// Session owns one browser's loaded table and indicator selection. All
// transitions hold mu, so View never sees a half-applied Load.
type Session struct {
	id string

	mu       sync.Mutex
	state    State
	table    quote.PriceTable
	window   quote.Window
	selected []indicator.Kind
	overlays map[indicator.Kind][]indicator.Series
	version  uint64
	touched  time.Time

	subMu   sync.Mutex
	subs    map[int]func(View)
	nextSub int
}

func New(id string) *Session {
	selected := make([]indicator.Kind, len(DefaultSelection))
	copy(selected, DefaultSelection)
	return &Session{
		id:       id,
		state:    Empty,
		selected: selected,
		overlays: make(map[indicator.Kind][]indicator.Series),
		touched:  time.Now(),
		subs:     make(map[int]func(View)),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load replaces the table wholesale and recomputes every selected overlay
// against it. On error the session keeps its previous table and overlays.
func (s *Session) Load(table quote.PriceTable, window quote.Window) error {
	s.mu.Lock()

	overlays := make(map[indicator.Kind][]indicator.Series, len(s.selected))
	for _, k := range s.selected {
		series, err := indicator.Compute(table, k)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("compute %s: %w", k, err)
		}
		overlays[k] = series
	}
	table, err := attachDerived(table, overlays)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.table = table
	s.window = window
	s.overlays = overlays
	s.state = Loaded
	view := s.commitLocked()
	s.mu.Unlock()

	s.notify(view)
	return nil
}

// Select sets the indicator selection. Only kinds not already computed are
// computed; deselected overlays are dropped. In Empty only the selection is stored.
func (s *Session) Select(kinds []indicator.Kind) error {
	for _, k := range kinds {
		if !k.Valid() {
			return fmt.Errorf("%w: %d", indicator.ErrUnknownKind, int(k))
		}
	}
	selected := dedupe(kinds)

	s.mu.Lock()

	table := s.table
	overlays := make(map[indicator.Kind][]indicator.Series, len(selected))
	if s.state == Loaded {
		for _, k := range selected {
			if existing, ok := s.overlays[k]; ok {
				overlays[k] = existing
				continue
			}
			series, err := indicator.Compute(table, k)
			if err != nil {
				s.mu.Unlock()
				return fmt.Errorf("compute %s: %w", k, err)
			}
			overlays[k] = series
		}
		var err error
		if table, err = attachDerived(table, overlays); err != nil {
			s.mu.Unlock()
			return err
		}
	}

	s.table = table
	s.selected = selected
	s.overlays = overlays
	view := s.commitLocked()
	s.mu.Unlock()

	s.notify(view)
	return nil
}

// View returns a consistent copy of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()
	return s.viewLocked()
}

// Table returns the loaded table, including derived columns.
func (s *Session) Table() quote.PriceTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// Subscribe registers fn to receive the view after every transition. The
// returned func removes the subscription.
func (s *Session) Subscribe(fn func(View)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) commitLocked() View {
	s.version++
	s.touched = time.Now()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		ID:       s.id,
		Version:  s.version,
		State:    s.state,
		Bars:     []quote.PriceBar{},
		Selected: make([]indicator.Kind, len(s.selected)),
		Overlays: []indicator.Series{},
	}
	copy(v.Selected, s.selected)

	if s.state == Loaded {
		v.Symbol = s.table.Symbol
		v.Start = s.window.Start.Format(quote.DateLayout)
		v.End = s.window.End.Format(quote.DateLayout)
		v.Bars = make([]quote.PriceBar, len(s.table.Bars))
		copy(v.Bars, s.table.Bars)
		for _, k := range s.selected {
			v.Overlays = append(v.Overlays, s.overlays[k]...)
		}
	}
	return v
}

func (s *Session) notify(v View) {
	s.subMu.Lock()
	fns := make([]func(View), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// attachDerived stores the VWAP overlay on the table itself while it is
// selected and drops the column once it is not.
func attachDerived(table quote.PriceTable, overlays map[indicator.Kind][]indicator.Series) (quote.PriceTable, error) {
	series, ok := overlays[indicator.VWAP]
	if !ok || len(series) == 0 {
		return table.WithoutColumn(quote.VWAPColumn), nil
	}
	if current, has := table.VWAP(); has && len(current) == len(series[0].Values) {
		return table, nil
	}
	out, err := table.WithVWAP(series[0].Values)
	if err != nil {
		return table, fmt.Errorf("attach vwap: %w", err)
	}
	return out, nil
}

func dedupe(kinds []indicator.Kind) []indicator.Kind {
	out := make([]indicator.Kind, 0, len(kinds))
	seen := make(map[indicator.Kind]bool, len(kinds))
	for _, k := range kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
