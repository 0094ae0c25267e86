package task

import (
	"testing"
	"time"
)

func TestParseDueDate(t *testing.T) {
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "display layout", in: "09/03/2026", want: want},
		{name: "iso layout", in: "2026-03-09", want: want},
		{name: "empty", in: "", wantErr: true},
		{name: "us layout", in: "03/09/26", wantErr: true},
		{name: "garbage", in: "next tuesday", wantErr: true},
		{name: "impossible date", in: "32/01/2026", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDueDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDueDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && !got.Equal(tt.want) {
				t.Errorf("ParseDueDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTaskDueDate(t *testing.T) {
	tsk := Task{DueAt: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)}
	if got := tsk.DueDate(); got != "09/03/2026" {
		t.Errorf("DueDate() = %q, want 09/03/2026", got)
	}
}

func TestTodayUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// local 9 Mar 08:00 +09:00 is still 8 Mar in UTC
	now := time.Date(2026, 3, 9, 8, 0, 0, 0, loc)
	want := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	if got := todayUTC(now); !got.Equal(want) {
		t.Errorf("todayUTC() = %v, want %v", got, want)
	}
}
