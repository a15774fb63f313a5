package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WorkItemStatus is the lifecycle state of a work item. Values are stored as
// ordinals so that sorting follows Todo < InProgress < Done.
type WorkItemStatus int

const (
	StatusTodo WorkItemStatus = iota
	StatusInProgress
	StatusDone
)

var statusNames = [...]string{"Todo", "InProgress", "Done"}

// WorkItemPriority is the urgency of a work item, ordered Low < Medium < High.
type WorkItemPriority int

const (
	PriorityLow WorkItemPriority = iota
	PriorityMedium
	PriorityHigh
)

var priorityNames = [...]string{"Low", "Medium", "High"}

// Title and description bounds.
const (
	TitleMinLen       = 3
	TitleMaxLen       = 255
	DescriptionMaxLen = 2000
)

// WorkItem is a single tracked task.
type WorkItem struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	Status      WorkItemStatus   `json:"status"`
	Priority    WorkItemPriority `json:"priority"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// ── Status ───────────────────────────────────────────────────────────────────

func (s WorkItemStatus) Valid() bool {
	return s >= StatusTodo && s <= StatusDone
}

func (s WorkItemStatus) String() string {
	if !s.Valid() {
		return "WorkItemStatus(" + strconv.Itoa(int(s)) + ")"
	}
	return statusNames[s]
}

// ParseStatus accepts a status name in any letter case or its ordinal.
func ParseStatus(v string) (WorkItemStatus, error) {
	v = strings.TrimSpace(v)
	for i, name := range statusNames {
		if strings.EqualFold(v, name) {
			return WorkItemStatus(i), nil
		}
	}
	if n, err := strconv.Atoi(v); err == nil && WorkItemStatus(n).Valid() {
		return WorkItemStatus(n), nil
	}
	return 0, fmt.Errorf("unknown status %q", v)
}

func (s WorkItemStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("marshal status: invalid value %d", int(s))
	}
	return json.Marshal(s.String())
}

func (s *WorkItemStatus) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	raw, err := enumToken(data)
	if err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ── Priority ─────────────────────────────────────────────────────────────────

func (p WorkItemPriority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

func (p WorkItemPriority) String() string {
	if !p.Valid() {
		return "WorkItemPriority(" + strconv.Itoa(int(p)) + ")"
	}
	return priorityNames[p]
}

// ParsePriority accepts a priority name in any letter case or its ordinal.
func ParsePriority(v string) (WorkItemPriority, error) {
	v = strings.TrimSpace(v)
	for i, name := range priorityNames {
		if strings.EqualFold(v, name) {
			return WorkItemPriority(i), nil
		}
	}
	if n, err := strconv.Atoi(v); err == nil && WorkItemPriority(n).Valid() {
		return WorkItemPriority(n), nil
	}
	return 0, fmt.Errorf("unknown priority %q", v)
}

func (p WorkItemPriority) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("marshal priority: invalid value %d", int(p))
	}
	return json.Marshal(p.String())
}

func (p *WorkItemPriority) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	raw, err := enumToken(data)
	if err != nil {
		return err
	}
	parsed, err := ParsePriority(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// enumToken extracts either a JSON string or a bare JSON integer.
func enumToken(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return "", fmt.Errorf("enum value must be a string or integer")
	}
	return strconv.Itoa(n), nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
