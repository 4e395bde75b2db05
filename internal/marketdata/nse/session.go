package nse

import "time"

// Indian market timings. NSE trades 09:15 to 15:30 IST on weekdays, with
// a pre-open window from 09:00.
const (
	SessionPreMarket  = "PRE_MARKET"
	SessionMarket     = "MARKET_HOURS"
	SessionPostMarket = "POST_MARKET_CLOSED"
	SessionPreOpen    = "PRE_MARKET_CLOSED"
	SessionWeekend    = "WEEKEND_CLOSED"
)

// IST is fixed at UTC+5:30; India has no daylight saving.
var IST = time.FixedZone("IST", 5*3600+30*60)

// Now returns the current time in IST.
func Now() time.Time {
	return time.Now().In(IST)
}

func minutesOfDay(t time.Time) int {
	t = t.In(IST)
	return t.Hour()*60 + t.Minute()
}

// IsTradingDay reports whether t falls on a weekday. Exchange holidays
// are not tracked; the market status endpoint covers those.
func IsTradingDay(t time.Time) bool {
	wd := t.In(IST).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// IsMarketHours reports whether t is within the regular trading session.
func IsMarketHours(t time.Time) bool {
	if !IsTradingDay(t) {
		return false
	}
	m := minutesOfDay(t)
	return m >= 9*60+15 && m <= 15*60+30
}

// SessionName classifies t into one of the session constants.
func SessionName(t time.Time) string {
	if !IsTradingDay(t) {
		return SessionWeekend
	}
	switch m := minutesOfDay(t); {
	case m >= 9*60 && m < 9*60+15:
		return SessionPreMarket
	case m >= 9*60+15 && m <= 15*60+30:
		return SessionMarket
	case m > 15*60+30:
		return SessionPostMarket
	default:
		return SessionPreOpen
	}
}
