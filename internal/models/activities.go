package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// ActivityDelimiter separates activity names in the serialized form.
const ActivityDelimiter = ','

const activityEscape = '\\'

// ErrMalformedActivities is returned when a serialized activity list ends
// in a dangling escape character.
var ErrMalformedActivities = errors.New("malformed activity list")

// Activities is an ordered list of activity names. It serializes to a
// single delimited string; delimiter and escape characters inside a name
// are escaped so decoding always returns the original list.
type Activities []string

// Encode joins the activities with ActivityDelimiter.
func (a Activities) Encode() string {
	var b strings.Builder
	for i, name := range a {
		if i > 0 {
			b.WriteRune(ActivityDelimiter)
		}
		for _, r := range name {
			if r == ActivityDelimiter || r == activityEscape {
				b.WriteRune(activityEscape)
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DecodeActivities reverses Encode. The empty string decodes to an empty list.
func DecodeActivities(s string) (Activities, error) {
	if s == "" {
		return Activities{}, nil
	}
	var (
		out     Activities
		current strings.Builder
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == activityEscape:
			escaped = true
		case r == ActivityDelimiter:
			out = append(out, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if escaped {
		return nil, fmt.Errorf("%w: %q", ErrMalformedActivities, s)
	}
	return append(out, current.String()), nil
}

// Value implements driver.Valuer.
func (a Activities) Value() (driver.Value, error) {
	return a.Encode(), nil
}

// Scan implements sql.Scanner.
func (a *Activities) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*a = Activities{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Activities", src)
	}
	decoded, err := DecodeActivities(s)
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

func (Activities) GormDataType() string {
	return "string"
}
