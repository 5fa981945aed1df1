package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// The campus-info backend is inconsistent about field names and value shapes
// across endpoints: ids arrive as "id" or "pk", bodies as "content", "body" or
// "text", authors as a bare string or a nested object, and timestamps under
// several names and formats. Normalization happens exactly once, at unmarshal
// time, so the rest of the codebase only ever sees the canonical types.

// authorField is the polymorphic author value: either a bare username string
// or an object carrying "username" and/or "name".
type authorField struct {
	display string
}

func (a *authorField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.display = s
		return nil
	}
	var obj struct {
		Username string `json:"username"`
		Name     string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if obj.Username != "" {
			a.display = obj.Username
		} else {
			a.display = obj.Name
		}
		return nil
	}
	// Null or an unexpected shape; leave the author empty rather than fail
	// the whole record.
	a.display = ""
	return nil
}

// idField accepts a JSON number, a numeric string, or an object with an
// "id"/"pk" member, and normalizes all of them to an integer id.
type idField struct {
	value int64
	ok    bool
}

func (f *idField) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			f.value, f.ok = v, true
			return nil
		}
		if v, err := n.Float64(); err == nil {
			f.value, f.ok = int64(v), true
			return nil
		}
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			f.value, f.ok = v, true
		}
		return nil
	}
	var obj struct {
		ID *idField `json:"id"`
		PK *idField `json:"pk"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if obj.ID != nil && obj.ID.ok {
			f.value, f.ok = obj.ID.value, true
		} else if obj.PK != nil && obj.PK.ok {
			f.value, f.ok = obj.PK.value, true
		}
		return nil
	}
	return nil
}

// timeField accepts RFC 3339 timestamps, date-only strings, and unix second
// numbers. Unparsable values normalize to the zero time.
type timeField struct {
	value time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (f *timeField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				f.value = t
				return nil
			}
		}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil && n > 0 {
		sec := int64(n)
		nsec := int64((n - float64(sec)) * 1e9)
		f.value = time.Unix(sec, nsec).UTC()
	}
	return nil
}

func firstID(fields ...idField) (int64, bool) {
	for _, f := range fields {
		if f.ok {
			return f.value, true
		}
	}
	return 0, false
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstTime(fields ...timeField) time.Time {
	for _, f := range fields {
		if !f.value.IsZero() {
			return f.value
		}
	}
	return time.Time{}
}
