package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/duesbook/duesbook/internal/model"
)

// Layouts tried in order. US month-first wins over day-first when both
// would parse.
var dateLayouts = []string{
	"1/2/2006",
	"1-2-2006",
	"2/1/2006",
	"2-1-2006",
	"2006-01-02",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"1/2/06",
	time.RFC3339,
}

// ParseDate reads a date as bank and roster exports write it. Years outside
// 1901-2099 are rejected.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" || s == "undefined" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() <= 1900 || t.Year() >= 2100 {
			continue
		}
		return model.DateOf(t), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
