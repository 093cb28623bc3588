package filters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Errors surfaced to callers; handlers map both to HTTP 400.
var (
	ErrInvalidPeriod = errors.New("filters: invalid period")
	ErrInvalidFilter = errors.New("filters: invalid filter value")
)

// Cancelled sale statuses excluded by the default policy. The feed mixes
// Portuguese and English status codes.
const cancelledStatuses = "('CANCELADO', 'CANCELLED')"

// ExcludeCancelled is the base predicate the default policy always applies.
const ExcludeCancelled = "s.sale_status_desc NOT IN " + cancelledStatuses

// Policy names the divergent behaviours of the two historical WHERE-clause
// builders so they are explicit configuration rather than duplicated code.
type Policy struct {
	// IncludeCancelled keeps cancelled sales in scope and switches the time
	// window to absolute clock-derived bounds and the multi-value id filters.
	IncludeCancelled bool
	// DefaultWindowDays fills the time window when no selector is present.
	// Zero means no default window.
	DefaultWindowDays int
	// Now supplies the clock for absolute windows; nil means time.Now.
	Now func() time.Time
}

// Default excludes cancelled sales and applies no time window unless one is
// selected, matching the main dashboard endpoints.
var Default = Policy{}

// IncludingCancelled keeps cancelled sales and defaults to a trailing
// 30-day window, matching the operational endpoints.
var IncludingCancelled = Policy{IncludeCancelled: true, DefaultWindowDays: 30}

// ParsePeriodDays extracts the day count from a relative period such as
// "30d". An empty period yields the fallback; anything non-numeric or
// non-positive is rejected everywhere, not just on the metrics endpoint.
func ParsePeriodDays(period string, fallback int) (int, error) {
	period = strings.TrimSpace(period)
	if period == "" {
		return fallback, nil
	}
	digits := strings.TrimSuffix(period, "d")
	days, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	if days <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	return days, nil
}

// Compile translates a filter set into a WHERE clause under the given policy.
func Compile(set Set, pol Policy) (Clause, error) {
	b := NewBuilder()
	if err := b.ApplySet(set, pol); err != nil {
		return Clause{}, err
	}
	return b.Where(), nil
}

// ApplySet appends the predicates a filter set selects under the policy.
// Callers may add further predicates (e.g. a comparison window) before
// rendering; numbering is assigned once, in Where.
func (b *Builder) ApplySet(set Set, pol Policy) error {
	if pol.IncludeCancelled {
		return b.applyIncludingCancelled(set, pol)
	}
	return b.applyDefault(set)
}

func (b *Builder) applyDefault(set Set) error {
	b.Add(ExcludeCancelled)

	// Explicit calendar bounds win over a relative period.
	switch {
	case set.HasExplicitDates():
		b.Add("s.created_at BETWEEN $%d AND $%d", set.StartDate, set.EndDate)
	case set.Period != "":
		days, err := ParsePeriodDays(set.Period, 0)
		if err != nil {
			return err
		}
		b.Add(fmt.Sprintf("s.created_at >= NOW() - INTERVAL '%d days'", days))
	}

	if set.Channel != "" && set.Channel != AllChannels {
		b.Add("c.name = $%d", set.Channel)
	}
	if set.ChannelType != "" && set.ChannelType != AllChannels {
		b.Add("c.type = $%d", set.ChannelType)
	}
	if set.Store != "" && set.Store != AllStores {
		id, err := strconv.Atoi(set.Store)
		if err != nil {
			return fmt.Errorf("%w: store %q", ErrInvalidFilter, set.Store)
		}
		b.Add("st.id = $%d", id)
	}
	if set.SubBrand != "" && set.SubBrand != AllStores {
		id, err := strconv.Atoi(set.SubBrand)
		if err != nil {
			return fmt.Errorf("%w: subBrand %q", ErrInvalidFilter, set.SubBrand)
		}
		b.Add("s.sub_brand_id = $%d", id)
	}
	return nil
}

func (b *Builder) applyIncludingCancelled(set Set, pol Policy) error {
	if set.StoreIDs != "" {
		ids, err := parseIDList(set.StoreIDs)
		if err != nil {
			return fmt.Errorf("%w: storeIds %q", ErrInvalidFilter, set.StoreIDs)
		}
		b.Add("st.id = ANY($%d)", ids)
	}
	if set.ChannelIDs != "" {
		ids, err := parseIDList(set.ChannelIDs)
		if err != nil {
			return fmt.Errorf("%w: channelIds %q", ErrInvalidFilter, set.ChannelIDs)
		}
		b.Add("c.id = ANY($%d)", ids)
	}

	if set.HasExplicitDates() {
		start, end, err := DayBounds(set.StartDate, set.EndDate)
		if err != nil {
			return err
		}
		b.Add("s.created_at >= $%d", start)
		b.Add("s.created_at <= $%d", end)
		return nil
	}

	days, err := ParsePeriodDays(set.Period, pol.DefaultWindowDays)
	if err != nil {
		return err
	}
	if days <= 0 {
		return nil
	}
	now := time.Now()
	if pol.Now != nil {
		now = pol.Now()
	}
	start := startOfDay(now.AddDate(0, 0, -(days - 1)))
	end := endOfDay(now)
	b.Add("s.created_at >= $%d", start)
	b.Add("s.created_at <= $%d", end)
	return nil
}

// DayBounds parses two inclusive calendar dates into a start-of-day and
// end-of-day timestamp pair in local time.
func DayBounds(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: startDate %q", ErrInvalidFilter, startDate)
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: endDate %q", ErrInvalidFilter, endDate)
	}
	return start, endOfDay(end), nil
}

func parseIDList(raw string) ([]int32, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int32, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, err
		}
		ids = append(ids, int32(id))
	}
	return ids, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}
