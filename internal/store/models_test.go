package store

import (
	"testing"
	"time"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want TaskStatus
	}{
		{"pending", StatusPending},
		{"Pending", StatusPending},
		{"  IN-PROGRESS ", StatusInProgress},
		{"Completed", StatusCompleted},
		{"", TaskStatus("")},
		{"done", TaskStatus("done")},
	}

	for _, tt := range tests {
		if got := NormalizeStatus(tt.in); got != tt.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTaskStatus_Valid(t *testing.T) {
	for _, s := range []TaskStatus{StatusPending, StatusInProgress, StatusCompleted} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []TaskStatus{"", "done", "PENDING"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestTask_BeforeCreate_Defaults(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	task := &Task{
		Title:       "x",
		Description: "y",
		DueDate:     time.Date(2026, 9, 15, 12, 0, 0, 0, loc),
	}

	if err := task.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if task.ID == "" {
		t.Error("expected an ID to be assigned")
	}
	if task.Status != StatusPending {
		t.Errorf("expected pending, got %s", task.Status)
	}
	if task.DueDate.Location() != time.UTC {
		t.Error("expected due date pinned to UTC")
	}
	if !task.DueDate.Equal(time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("UTC conversion changed the instant: %s", task.DueDate)
	}
}

func TestUser_BeforeCreate_AssignsID(t *testing.T) {
	u := &User{Name: "alice1", Email: "a@x.com", PasswordHash: "hash"}
	if err := u.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if u.ID == "" {
		t.Error("expected an ID to be assigned")
	}

	existing := &User{ID: "keep-me", Name: "bob22", Email: "b@x.com", PasswordHash: "hash"}
	if err := existing.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if existing.ID != "keep-me" {
		t.Errorf("provided ID was overwritten: %s", existing.ID)
	}
}
