package moved

import (
	"encoding/json"
	"fmt"
)

// Direction says which side of a pairing carries the extra indentation.
type Direction int

const (
	Added Direction = iota + 1
	Removed
)

func (d Direction) String() string {
	switch d {
	case Added:
		return "added"
	case Removed:
		return "removed"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// MarshalJSON writes the zero Direction as an empty string.
func (d Direction) MarshalJSON() ([]byte, error) {
	if d == 0 {
		return json.Marshal("")
	}
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "":
		*d = 0
	case "added":
		*d = Added
	case "removed":
		*d = Removed
	default:
		return fmt.Errorf("unknown indentation direction %q", s)
	}
	return nil
}

// Indentation is the fixed whitespace delta between the removed and added
// sides of one matching block. An empty Whitespace means no change.
type Indentation struct {
	Direction  Direction `json:"direction"`
	Whitespace string    `json:"whitespace"`
}

func (i Indentation) IsZero() bool {
	return i.Whitespace == ""
}
