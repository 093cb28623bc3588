package filters

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Sentinel values the dashboard sends when a selector means "no filter".
const (
	AllChannels = "todos"
	AllStores   = "todas"
)

// Set carries the filter selections of one dashboard request. Fields are kept
// as the raw strings received on the wire; Compile owns parsing and validation.
type Set struct {
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Period      string `json:"period,omitempty"`
	Channel     string `json:"channel,omitempty"`
	ChannelType string `json:"channelType,omitempty"`
	Store       string `json:"store,omitempty"`
	SubBrand    string `json:"subBrand,omitempty"`
	StoreIDs    string `json:"storeIds,omitempty"`
	ChannelIDs  string `json:"channelIds,omitempty"`
}

// ParseQuery extracts the recognised filter fields from a query string.
func ParseQuery(values url.Values) Set {
	get := func(key string) string {
		return strings.TrimSpace(values.Get(key))
	}
	return Set{
		StartDate:   get("startDate"),
		EndDate:     get("endDate"),
		Period:      get("period"),
		Channel:     get("channel"),
		ChannelType: get("channelType"),
		Store:       get("store"),
		SubBrand:    get("subBrand"),
		StoreIDs:    get("storeIds"),
		ChannelIDs:  get("channelIds"),
	}
}

// WithoutWindow returns a copy with every time-window selector removed. The
// period comparison recompiles this base once and reuses it for both windows.
func (s Set) WithoutWindow() Set {
	s.StartDate = ""
	s.EndDate = ""
	s.Period = ""
	return s
}

// HasExplicitDates reports whether both calendar bounds were supplied.
func (s Set) HasExplicitDates() bool {
	return s.StartDate != "" && s.EndDate != ""
}

// CacheToken serialises the set for use inside cache keys.
func (s Set) CacheToken() string {
	raw, err := json.Marshal(s)
	if err != nil {
		return "-"
	}
	return string(raw)
}
