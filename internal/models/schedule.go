package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidSchedule = errors.New("invalid schedule format")

// ScheduleSlot is one recurring working window, e.g. Monday 08:00-12:00.
type ScheduleSlot struct {
	Day       string `bson:"day" json:"day"`
	StartTime string `bson:"startTime" json:"startTime"`
	EndTime   string `bson:"endTime" json:"endTime"`
}

// RawSchedule holds a schedule exactly as the client sent it: either a JSON
// array or a string containing one (multipart forms send the latter).
type RawSchedule []byte

func (r *RawSchedule) UnmarshalJSON(data []byte) error {
	*r = append((*r)[0:0], data...)
	return nil
}

// ParseSchedule decodes raw into slots. Empty input and JSON null yield an
// empty schedule.
func ParseSchedule(raw RawSchedule) ([]ScheduleSlot, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []ScheduleSlot{}, nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		return ParseSchedule(RawSchedule(s))
	}

	var slots []ScheduleSlot
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&slots); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	for i, s := range slots {
		if s.Day == "" {
			return nil, fmt.Errorf("%w: slot %d has no day", ErrInvalidSchedule, i)
		}
	}
	if slots == nil {
		slots = []ScheduleSlot{}
	}
	return slots, nil
}
