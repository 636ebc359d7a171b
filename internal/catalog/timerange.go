package catalog

import (
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// TimeRange is the parsed form of the start/end time fields. It is reported
// back to the UI but does not restrict which frames are cycled.
type TimeRange struct {
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	StartRaw string     `json:"start_raw"`
	EndRaw   string     `json:"end_raw"`
}

// ParseTimeRange never fails; text that does not parse is kept raw only.
// TODO: restrict cycling to frames inside the range once frame timestamps are read from JP2 metadata.
func ParseTimeRange(start, end string) TimeRange {
	return TimeRange{
		Start:    parseTime(start),
		End:      parseTime(end),
		StartRaw: start,
		EndRaw:   end,
	}
}

func parseTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
