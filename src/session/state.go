package session

import (
	"crypto/subtle"
	"strings"

	"stock-dashboard/src/helpers"
	"stock-dashboard/src/models"
)

// Screen names one of the fixed views.
type Screen string

const (
	ScreenLogin     Screen = "login"
	ScreenStock     Screen = "stock"
	ScreenSearch    Screen = "search"
	ScreenWatchlist Screen = "watchlist"
	ScreenSIP       Screen = "sip"
)

// ParseScreen maps a name to a Screen. Unknown names yield ScreenStock.
func ParseScreen(s string) Screen {
	switch sc := Screen(strings.ToLower(strings.TrimSpace(s))); sc {
	case ScreenLogin, ScreenStock, ScreenSearch, ScreenWatchlist, ScreenSIP:
		return sc
	default:
		return ScreenStock
	}
}

// State is one visitor's navigation context. It is a value: every transition
// returns a new State and leaves the receiver untouched.
type State struct {
	Screen        Screen           `json:"screen"`
	Ticker        string           `json:"ticker"`
	Timeframe     models.Timeframe `json:"timeframe"`
	Watchlist     []string         `json:"watchlist"`
	Authenticated bool             `json:"authenticated"`
}

// -----------------------------------------------------------------------------

func NewState(ticker string, tf models.Timeframe, watchlist []string) State {
	if tf == "" {
		tf = models.DefaultTimeframe
	}
	s := State{
		Screen:    ScreenLogin,
		Ticker:    strings.ToUpper(strings.TrimSpace(ticker)),
		Timeframe: tf,
	}
	for _, t := range watchlist {
		s = s.AddToWatchlist(t)
	}
	return s
}

func (s State) clone() State {
	s.Watchlist = append([]string(nil), s.Watchlist...)
	return s
}

// -----------------------------------------------------------------------------

// Authenticate compares the input against the key in constant time. On a
// mismatch the state is returned unchanged together with an AccessDenied error.
func (s State) Authenticate(input, key string) (State, error) {
	if key == "" || subtle.ConstantTimeCompare([]byte(input), []byte(key)) != 1 {
		return s.clone(), helpers.AccessDenied("authenticate")
	}
	next := s.clone()
	next.Authenticated = true
	next.Screen = ScreenStock
	return next, nil
}

// Navigate switches screens. An unauthenticated state only ever reaches the
// login screen.
func (s State) Navigate(screen Screen) State {
	next := s.clone()
	if !s.Authenticated {
		next.Screen = ScreenLogin
		return next
	}
	next.Screen = screen
	return next
}

func (s State) SelectTicker(ticker string) State {
	next := s.clone()
	if t := strings.ToUpper(strings.TrimSpace(ticker)); t != "" {
		next.Ticker = t
	}
	return next
}

func (s State) SetTimeframe(tf models.Timeframe) State {
	next := s.clone()
	next.Timeframe = tf
	return next
}

// AddToWatchlist appends the ticker unless it is already present.
func (s State) AddToWatchlist(ticker string) State {
	next := s.clone()
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" || s.InWatchlist(t) {
		return next
	}
	next.Watchlist = append(next.Watchlist, t)
	return next
}

func (s State) RemoveFromWatchlist(ticker string) State {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	next := s.clone()
	next.Watchlist = next.Watchlist[:0]
	for _, w := range s.Watchlist {
		if w != t {
			next.Watchlist = append(next.Watchlist, w)
		}
	}
	return next
}

func (s State) InWatchlist(ticker string) bool {
	for _, w := range s.Watchlist {
		if w == ticker {
			return true
		}
	}
	return false
}

// Logout drops authentication but keeps the visitor's selections.
func (s State) Logout() State {
	next := s.clone()
	next.Authenticated = false
	next.Screen = ScreenLogin
	return next
}
