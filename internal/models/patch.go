package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMalformedPayload     = errors.New("malformed payload")
	ErrInvalidReminderShape = errors.New("invalid reminder format")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrInvalidDueDate       = errors.New("invalid date: use YYYY-MM-DD or RFC3339")
)

var flexLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseFlexTime parses a date-only value (midnight UTC) or an RFC3339 timestamp.
func ParseFlexTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range flexLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDueDate
}

// TaskPatch is a partial set of client-writable task fields. Only fields
// present in the payload are set; id, ownerId and timestamps are never
// client-writable and are dropped on decode.
type TaskPatch struct {
	Title        *string
	Description  *string
	Completed    *bool
	Priority     *Priority
	DueDate      *time.Time
	ClearDueDate bool
	Reminder     *Reminder
}

// DecodeTaskPatch decodes a JSON object into a TaskPatch. An empty body is an
// empty patch. A reminder that is present but not an object is rejected with
// ErrInvalidReminderShape; null resets it to the disabled default.
func DecodeTaskPatch(body []byte) (TaskPatch, error) {
	var p TaskPatch
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return p, nil
	}
	if body[0] != '{' {
		return p, fmt.Errorf("%w: body must be a JSON object", ErrMalformedPayload)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if v, ok := raw["reminder"]; ok {
		r, err := decodeReminder(v)
		if err != nil {
			return p, err
		}
		p.Reminder = &r
	}
	if v, ok := raw["title"]; ok && !isNull(v) {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return p, fmt.Errorf("%w: title: %v", ErrMalformedPayload, err)
		}
		p.Title = &s
	}
	if v, ok := raw["description"]; ok && !isNull(v) {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return p, fmt.Errorf("%w: description: %v", ErrMalformedPayload, err)
		}
		p.Description = &s
	}
	if v, ok := raw["completed"]; ok && !isNull(v) {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return p, fmt.Errorf("%w: completed: %v", ErrMalformedPayload, err)
		}
		p.Completed = &b
	}
	if v, ok := raw["priority"]; ok && !isNull(v) {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return p, ErrInvalidPriority
		}
		pr, ok := ParsePriority(s)
		if !ok {
			return p, ErrInvalidPriority
		}
		p.Priority = &pr
	}
	if v, ok := raw["dueDate"]; ok {
		t, err := decodeOptionalTime(v)
		if err != nil {
			return p, err
		}
		if t == nil {
			p.ClearDueDate = true
		} else {
			p.DueDate = t
		}
	}
	return p, nil
}

func decodeReminder(v json.RawMessage) (Reminder, error) {
	if isNull(v) {
		return Reminder{}, nil
	}
	if len(v) == 0 || v[0] != '{' {
		return Reminder{}, ErrInvalidReminderShape
	}
	var wire struct {
		Enabled bool            `json:"enabled"`
		Time    json.RawMessage `json:"time"`
	}
	if err := json.Unmarshal(v, &wire); err != nil {
		return Reminder{}, ErrInvalidReminderShape
	}
	r := Reminder{Enabled: wire.Enabled}
	if len(wire.Time) > 0 {
		t, err := decodeOptionalTime(wire.Time)
		if err != nil {
			return Reminder{}, ErrInvalidReminderShape
		}
		r.Time = t
	}
	return r, nil
}

// decodeOptionalTime maps null and "" to nil.
func decodeOptionalTime(v json.RawMessage) (*time.Time, error) {
	if isNull(v) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, ErrInvalidDueDate
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseFlexTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}

// MarshalJSON emits only the fields that are set, so the patch round-trips
// through DecodeTaskPatch.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if p.Title != nil {
		out["title"] = *p.Title
	}
	if p.Description != nil {
		out["description"] = *p.Description
	}
	if p.Completed != nil {
		out["completed"] = *p.Completed
	}
	if p.Priority != nil {
		out["priority"] = *p.Priority
	}
	if p.ClearDueDate {
		out["dueDate"] = nil
	} else if p.DueDate != nil {
		out["dueDate"] = p.DueDate.UTC().Format(time.RFC3339)
	}
	if p.Reminder != nil {
		out["reminder"] = *p.Reminder
	}
	return json.Marshal(out)
}

// Apply overwrites the supplied fields on t and reports whether the
// reminder setting changed.
func (p TaskPatch) Apply(t *Task) (reminderChanged bool) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Reminder != nil {
		reminderChanged = !t.Reminder.Equal(*p.Reminder)
		t.Reminder = *p.Reminder
	}
	return reminderChanged
}
