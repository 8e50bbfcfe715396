package convert

import (
	"errors"
	"strings"
	"time"
)

// errNoDateLayout is returned when no known layout matches a date value
var errNoDateLayout = errors.New("value does not match any known date layout")

// fallbackMasks are tried in order when a date field has no mask. Fractional
// seconds after the seconds field are accepted by every layout.
var fallbackMasks = []string{
	"yyyy-MM-dd'T'HH:mm:ssXXX",
	"yyyy-MM-dd'T'HH:mm:ss",
	"yyyy-MM-dd HH:mm:ss",
	"yyyy-MM-dd",
	"yyyy/MM/dd HH:mm:ss",
	"yyyy/MM/dd",
	"M/d/yyyy h:mm:ss a",
	"M/d/yyyy H:mm:ss",
	"M/d/yyyy",
	"d.M.yyyy H:mm:ss",
	"d.M.yyyy",
	"H:mm:ss",
}

var fallbackLayouts = compileMasks(fallbackMasks)

func compileMasks(masks []string) []string {
	layouts := make([]string, len(masks))
	for i, m := range masks {
		layout, err := DateLayout(m)
		if err != nil {
			panic(err)
		}
		layouts[i] = layout
	}
	return layouts
}

// parseDateAuto parses value with the first fallback layout that accepts it
func parseDateAuto(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errNoDateLayout
}
