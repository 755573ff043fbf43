package collector

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func sampleSummary() *Summary {
	return &Summary{
		Duration:    1500 * time.Millisecond,
		Events:      20,
		SeatTakes:   6,
		Rejections:  4,
		Sessions:    6,
		Finished:    3,
		MaxOccupied: 1,
		AllHelped:   true,
		Students: map[int]*StudentSummary{
			1: {Visits: 2, Helps: 2, WorkUnits: 4, Done: true},
			2: {Visits: 2, Rejections: 4, Helps: 2, WorkUnits: 9, Done: true},
			3: {Visits: 2, Helps: 2, WorkUnits: 5, Done: true},
		},
		Tutors: map[int]*TutorSummary{
			1: {Sessions: 6, HelpUnits: 12},
		},
		HelpDuration: DurationStats{Count: 6, Min: 10 * time.Millisecond, Max: 30 * time.Millisecond, Avg: 20 * time.Millisecond},
	}
}

func TestFormatText_BasicOutput(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, sampleSummary())
	output := buf.String()

	for _, want := range []string{
		"CSMC - Run Summary",
		"Students done:  3 / 3",
		"Seat takes:     6",
		"Rejections:     4",
		"Max occupied:   1",
		"Avg:    20ms",
		"tutor 1      sessions=6  help=12",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Worker panics") {
		t.Error("panic line should be omitted when there are none")
	}
}

func TestFormatText_StudentsSorted(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, sampleSummary())
	output := buf.String()

	i1 := strings.Index(output, "student 1 ")
	i2 := strings.Index(output, "student 2 ")
	i3 := strings.Index(output, "student 3 ")
	if i1 < 0 || i1 > i2 || i2 > i3 {
		t.Errorf("expected students in id order, got:\n%s", output)
	}
}

func TestFormatText_NoEvents(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, &Summary{})
	if !strings.Contains(buf.String(), "No events collected") {
		t.Errorf("expected 'No events collected', got: %s", buf.String())
	}
}

func TestFormatJSON_Fields(t *testing.T) {
	var buf bytes.Buffer
	FormatJSON(&buf, sampleSummary())
	out := buf.String()

	if !gjson.Valid(out) {
		t.Fatalf("invalid JSON: %s", out)
	}
	checks := map[string]string{
		"duration":              "1.5s",
		"seatTakes":             "6",
		"rejections":            "4",
		"finished":              "3",
		"allHelped":             "true",
		"helpDuration.avg":      "20ms",
		"students.2.rejections": "4",
		"students.3.done":       "true",
		"tutors.1.sessions":     "6",
	}
	for path, want := range checks {
		if got := gjson.Get(out, path).String(); got != want {
			t.Errorf("%s: expected %q, got %q", path, want, got)
		}
	}
	if n := len(gjson.Get(out, "students").Map()); n != 3 {
		t.Errorf("expected 3 students, got %d", n)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Microsecond, "500µs"},
		{20 * time.Millisecond, "20ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	if got := formatNumber(999); got != "999" {
		t.Errorf("expected 999, got %s", got)
	}
	if got := formatNumber(1234); got != "1,234" {
		t.Errorf("expected 1,234, got %s", got)
	}
}
