package entities

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Datetime represents a datetime stored as an RFC3339 string in every backend.
type Datetime time.Time

// MarshalJSON implements the json.Marshaler interface.
func (d Datetime) MarshalJSON() ([]byte, error) {
	if time.Time(d).IsZero() {
		return []byte(`null`), nil
	}
	return []byte(fmt.Sprintf(`%q`, time.Time(d).UTC().Format(time.RFC3339))), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Datetime) UnmarshalJSON(text []byte) error {
	got := strings.Trim(string(text), `"`)
	if got == "" || got == "null" {
		*d = Datetime(time.Time{})
		return nil
	}

	t, err := time.Parse(time.RFC3339, got)
	if err != nil {
		return fmt.Errorf("invalid datetime: %s", got)
	}
	*d = Datetime(t)
	return nil
}

func (d Datetime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if time.Time(d).IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(time.Time(d).UTC().Format(time.RFC3339))
}

func (d *Datetime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull {
		*d = Datetime(time.Time{})
		return nil
	}

	var got string
	if err := bson.UnmarshalValue(t, data, &got); err != nil {
		return fmt.Errorf("invalid datetime value: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339, got)
	if err != nil {
		return fmt.Errorf("invalid datetime: %s", got)
	}
	*d = Datetime(parsed)
	return nil
}

// Scan implements the sql.Scanner interface.
func (d *Datetime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = Datetime(v)
		return nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("invalid datetime: %s", v)
		}
		*d = Datetime(t)
		return nil
	default:
		return fmt.Errorf("invalid scan, type %T not supported for %T", src, d)
	}
}

// Value implements the driver.Valuer interface.
func (d Datetime) Value() (driver.Value, error) {
	return time.Time(d).UTC().Format(time.RFC3339), nil
}

// String implements the fmt.Stringer interface.
func (d Datetime) String() string {
	return time.Time(d).Format(time.RFC3339)
}

// Display renders the datetime the way the status embed shows the open date.
func (d Datetime) Display() string {
	return time.Time(d).UTC().Format("2006-01-02 15:04:05 UTC")
}
