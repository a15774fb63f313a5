package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]WorkItemStatus{
		"Todo":       StatusTodo,
		"inprogress": StatusInProgress,
		"DONE":       StatusDone,
		"1":          StatusInProgress,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseStatus(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseStatus("Blocked"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
	if _, err := ParseStatus("7"); err == nil {
		t.Fatalf("expected error for out-of-range ordinal")
	}
}

func TestParsePriority(t *testing.T) {
	if p, err := ParsePriority("high"); err != nil || p != PriorityHigh {
		t.Fatalf("expected High, got %v %v", p, err)
	}
	if _, err := ParsePriority("Urgent"); err == nil {
		t.Fatalf("expected error for unknown priority")
	}
}

func TestEnumOrdinalsFollowDeclarationOrder(t *testing.T) {
	if !(StatusTodo < StatusInProgress && StatusInProgress < StatusDone) {
		t.Fatalf("status ordinals out of order")
	}
	if !(PriorityLow < PriorityMedium && PriorityMedium < PriorityHigh) {
		t.Fatalf("priority ordinals out of order")
	}
}

func TestWorkItemJSON_UsesNames(t *testing.T) {
	item := WorkItem{ID: "x", Title: "Write docs", Status: StatusInProgress, Priority: PriorityHigh}

	b, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["status"] != "InProgress" || raw["priority"] != "High" {
		t.Fatalf("unexpected enum encoding: %s", b)
	}
	if _, ok := raw["description"]; !ok || raw["description"] != nil {
		t.Fatalf("expected null description, got %s", b)
	}
}

func TestEnumUnmarshal_AcceptsNamesAndOrdinals(t *testing.T) {
	var body struct {
		Status   WorkItemStatus   `json:"status"`
		Priority WorkItemPriority `json:"priority"`
	}
	if err := json.Unmarshal([]byte(`{"status":"done","priority":2}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Status != StatusDone || body.Priority != PriorityHigh {
		t.Fatalf("unexpected values: %+v", body)
	}

	if err := json.Unmarshal([]byte(`{"status":"Archived"}`), &body); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestParseSortField(t *testing.T) {
	cases := map[string]SortField{
		"title":     SortByTitle,
		"STATUS":    SortByStatus,
		"Priority":  SortByPriority,
		"updatedAt": SortByUpdatedAt,
		"createdAt": SortByCreatedAt,
		"bogus":     SortByCreatedAt,
		"":          SortByCreatedAt,
	}
	for in, want := range cases {
		if got := ParseSortField(in); got != want {
			t.Errorf("ParseSortField(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestParseSortDirection(t *testing.T) {
	if ParseSortDirection("DESC") != SortDesc {
		t.Fatalf("expected desc")
	}
	for _, in := range []string{"asc", "", "descending", "up"} {
		if ParseSortDirection(in) != SortAsc {
			t.Errorf("ParseSortDirection(%q) should be asc", in)
		}
	}
}

func TestErrorKinds(t *testing.T) {
	ve := NewValidationError()
	if ve.OrNil() != nil {
		t.Fatalf("empty validation error should be nil")
	}
	ve.Add("title", "title is required")
	ve.Add("title", "ignored")
	if !errors.Is(ve, ErrValidation) || ve.Fields["title"] != "title is required" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}

	var err error = &DuplicateCredentialError{Field: "email"}
	if !errors.Is(err, ErrDuplicateCredential) {
		t.Fatalf("expected duplicate credential kind")
	}
	if err.Error() != "Email already exists" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
