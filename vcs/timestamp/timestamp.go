package timestamp

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// ErrUnparseable is returned when no layout matches and
// the value is not an integer either.
var ErrUnparseable = errors.New("unparseable timestamp")

// format is one entry of the layout table. Values
// without an offset are interpreted in loc.
type format struct {
	name   string
	layout string
	loc    *time.Location
}

// formats is tried in order and must not be modified
// after init. Layouts with more fractional digits come
// before shorter ones.
var formats = []format{
	{
		name:   "iso8601 microseconds with offset",
		layout: "2006-01-02T15:04:05.000000Z07:00",
		loc:    time.UTC,
	},
	{
		name:   "iso8601 milliseconds with offset",
		layout: "2006-01-02T15:04:05.000Z07:00",
		loc:    time.UTC,
	},
	{
		name:   "medium date time",
		layout: "Jan 2, 2006 3:04:05 PM",
		loc:    time.UTC,
	},
	{
		name:   "space separated with offset",
		layout: "2006-01-02 15:04:05Z07:00",
		loc:    time.UTC,
	},
	{
		name:   "iso8601 basic with zulu literal",
		layout: "2006-01-02T15:04:05Z",
		loc:    time.UTC,
	},
}

// Parse converts raw into a time. Every layout of the
// table is tried in order, the first match wins. When
// none matches raw is read as milliseconds since the
// Unix epoch.
func Parse(raw string) (time.Time, error) {
	for _, f := range formats {
		t, err := time.ParseInLocation(f.layout, raw, f.loc)
		if err == nil {
			return t, nil
		}
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf(
			"%w: %q", ErrUnparseable, raw,
		)
	}

	return time.UnixMilli(ms).UTC(), nil
}

// Layouts returns the names of the textual layouts in
// the order Parse tries them.
func Layouts() []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.name
	}

	return names
}

// Timestamp is a time decoded from a JSON string in any
// layout Parse understands, or from a JSON number of
// epoch milliseconds. JSON null decodes to the zero
// Timestamp.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	const errCtx = "decoding timestamp"

	if string(data) == "null" {
		ts.Time = time.Time{}

		return nil
	}

	raw := string(data)

	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	t, err := Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	ts.Time = t

	return nil
}

// MarshalJSON implements json.Marshaler using the
// millisecond ISO 8601 layout. The zero Timestamp
// encodes as null.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(
		ts.Format("2006-01-02T15:04:05.000Z07:00"),
	)
}
