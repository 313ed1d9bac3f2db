package models

import (
	"errors"
	"testing"

	"github.com/desertthunder/albumsync/internal/shared"
)

func TestPermissions(t *testing.T) {
	t.Run("ParsePermissions", func(t *testing.T) {
		tc := []struct {
			in     string
			public bool
			friend bool
			family bool
		}{
			{"0", false, false, false},
			{"1", false, false, true},
			{"2", false, true, false},
			{"3", false, true, true},
			{"4", true, false, false},
			{"7", true, true, true},
			{"04", true, false, false},
			{" 6 ", true, true, false},
		}

		for _, tt := range tc {
			t.Run(tt.in, func(t *testing.T) {
				p, err := ParsePermissions(tt.in)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if p.IsPublic != tt.public || p.IsFriend != tt.friend || p.IsFamily != tt.family {
					t.Errorf("ParsePermissions(%q) = %+v", tt.in, p)
				}
				if p.PermComment != PermEverybody || p.PermAddMeta != PermContacts {
					t.Errorf("expected default interaction levels, got comment=%d addmeta=%d", p.PermComment, p.PermAddMeta)
				}
			})
		}
	})

	t.Run("ParsePermissions rejects invalid input", func(t *testing.T) {
		for _, in := range []string{"", "8", "9", "10", "public", "-1", "0x4"} {
			if _, err := ParsePermissions(in); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("ParsePermissions(%q): expected ErrInvalidArgument, got %v", in, err)
			}
		}
	})

	t.Run("Bits round trip", func(t *testing.T) {
		for bits := 0; bits <= 7; bits++ {
			if got := NewPermissions(bits).Bits(); got != bits {
				t.Errorf("NewPermissions(%d).Bits() = %d", bits, got)
			}
		}
	})

	t.Run("VisibilityPermissions", func(t *testing.T) {
		if p := VisibilityPermissions(true); !p.IsPublic || p.IsFriend || p.IsFamily {
			t.Errorf("expected public only, got %+v", p)
		}
		if p := VisibilityPermissions(false); p.Bits() != 0 {
			t.Errorf("expected private, got %+v", p)
		}
	})

	t.Run("String", func(t *testing.T) {
		tc := map[int]string{0: "private", 4: "public", 3: "friends+family", 7: "public+friends+family"}
		for bits, want := range tc {
			if got := NewPermissions(bits).String(); got != want {
				t.Errorf("NewPermissions(%d).String() = %q, want %q", bits, got, want)
			}
		}
	})
}

func TestRun(t *testing.T) {
	t.Run("NewRun", func(t *testing.T) {
		run := NewRun(1, CommandUpload, "/photos", "/photos/2020_Trip")
		if run.Status() != RunRunning {
			t.Errorf("expected status %s, got %s", RunRunning, run.Status())
		}
		if run.CompletedAt() != nil {
			t.Error("new run should not be completed")
		}
		if err := run.Validate(); err != nil {
			t.Errorf("expected valid run, got %v", err)
		}
	})

	t.Run("Complete", func(t *testing.T) {
		tc := []struct {
			name   string
			failed int
			err    error
			want   string
		}{
			{name: "clean", want: RunCompleted},
			{name: "with failed items", failed: 2, want: RunPartial},
			{name: "aborted", err: errors.New("boom"), want: RunFailed},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				run := NewRun(1, CommandPerms, "/r", "/r")
				run.SetCounts(3, 0, tt.failed)
				run.Complete(tt.err)

				if run.Status() != tt.want {
					t.Errorf("expected status %s, got %s", tt.want, run.Status())
				}
				if run.CompletedAt() == nil {
					t.Error("expected completed_at to be set")
				}
				if tt.err != nil && run.ErrorMessage() != tt.err.Error() {
					t.Errorf("expected error message %q, got %q", tt.err.Error(), run.ErrorMessage())
				}
				if run.Duration() < 0 {
					t.Errorf("duration should not be negative: %v", run.Duration())
				}
			})
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name string
			run  *Run
		}{
			{name: "unknown command", run: NewRun(1, "sync", "/r", "/r")},
			{name: "missing path", run: NewRun(1, CommandFix, "/r", "")},
			{name: "unknown status", run: func() *Run { r := NewRun(1, CommandFix, "/r", "/r"); r.SetStatus("done"); return r }()},
			{name: "negative counts", run: func() *Run { r := NewRun(1, CommandFix, "/r", "/r"); r.SetCounts(-1, 0, 0); return r }()},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if err := tt.run.Validate(); err == nil {
					t.Error("expected validation error")
				}
			})
		}
	})
}

func TestRunItem(t *testing.T) {
	item := NewRunItem("run-1", 0, "upload", "succeeded", "/r/a.jpg", "a")
	if err := item.Validate(); err != nil {
		t.Errorf("expected valid item, got %v", err)
	}
	if !item.UpdatedAt().Equal(item.CreatedAt()) {
		t.Error("items should not have a separate update time")
	}

	if err := NewRunItem("", 0, "upload", "succeeded", "p", "a").Validate(); err == nil {
		t.Error("expected error for missing run id")
	}
	if err := NewRunItem("run-1", -1, "upload", "succeeded", "p", "a").Validate(); err == nil {
		t.Error("expected error for negative position")
	}
	if err := NewRunItem("run-1", 0, "", "succeeded", "p", "a").Validate(); err == nil {
		t.Error("expected error for missing kind")
	}
}
