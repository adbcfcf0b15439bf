package moved

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is the wire form of a removed or added line.
type Record struct {
	File       string     `json:"file"`
	LineNumber LineNumber `json:"line_number"`
	Text       string     `json:"text"`
}

// LineNumber decodes from a JSON integer or a numeric string. Anything else
// fails to decode.
type LineNumber int

func (n *LineNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	v, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLineNumber, data)
	}
	*n = LineNumber(v)
	return nil
}

func RecordOf(line Line) Record {
	return Record{File: line.file, LineNumber: LineNumber(line.number), Text: line.Text()}
}

// Lines converts records to Lines, failing on the first invalid one.
func Lines(records []Record) ([]Line, error) {
	lines := make([]Line, 0, len(records))
	for i, r := range records {
		line, err := NewLine(r.File, int(r.LineNumber), r.Text)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, r.File, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}
