package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

// FormatText writes a summary in human-readable format.
func FormatText(w io.Writer, s *Summary) {
	if s.Events == 0 {
		fmt.Fprintln(w, "No events collected")
		return
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "CSMC - Run Summary")
	fmt.Fprintln(w, "==================")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Duration:       %v\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Students done:  %d / %d\n", s.Finished, len(s.Students))
	fmt.Fprintf(w, "Seat takes:     %s\n", formatNumber(s.SeatTakes))
	fmt.Fprintf(w, "Rejections:     %s\n", formatNumber(s.Rejections))
	fmt.Fprintf(w, "Sessions:       %s\n", formatNumber(s.Sessions))
	fmt.Fprintf(w, "Max occupied:   %d\n", s.MaxOccupied)
	if s.Panics > 0 {
		fmt.Fprintf(w, "Worker panics:  %d\n", s.Panics)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Help Durations:")
	fmt.Fprintf(w, "  Min:    %s\n", FormatDuration(s.HelpDuration.Min))
	fmt.Fprintf(w, "  Avg:    %s\n", FormatDuration(s.HelpDuration.Avg))
	fmt.Fprintf(w, "  Max:    %s\n", FormatDuration(s.HelpDuration.Max))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "By Student:")
	for _, id := range sortedKeys(s.Students) {
		st := s.Students[id]
		fmt.Fprintf(w, "  student %-4d visits=%d  rejected=%d  helps=%d  work=%d\n",
			id, st.Visits, st.Rejections, st.Helps, st.WorkUnits)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "By Tutor:")
	for _, id := range sortedKeys(s.Tutors) {
		tu := s.Tutors[id]
		fmt.Fprintf(w, "  tutor %-6d sessions=%d  help=%d\n", id, tu.Sessions, tu.HelpUnits)
	}
}

// FormatJSON writes a summary in JSON format.
func FormatJSON(w io.Writer, s *Summary) {
	output := struct {
		Duration     string                     `json:"duration"`
		Events       int                        `json:"events"`
		SeatTakes    int                        `json:"seatTakes"`
		Rejections   int                        `json:"rejections"`
		Sessions     int                        `json:"sessions"`
		Finished     int                        `json:"finished"`
		MaxOccupied  int                        `json:"maxOccupied"`
		Panics       int                        `json:"panics"`
		AllHelped    bool                       `json:"allHelped"`
		HelpDuration jsonDurationStats          `json:"helpDuration"`
		Students     map[string]jsonStudentStat `json:"students"`
		Tutors       map[string]jsonTutorStat   `json:"tutors"`
	}{
		Duration:     s.Duration.Round(time.Millisecond).String(),
		Events:       s.Events,
		SeatTakes:    s.SeatTakes,
		Rejections:   s.Rejections,
		Sessions:     s.Sessions,
		Finished:     s.Finished,
		MaxOccupied:  s.MaxOccupied,
		Panics:       s.Panics,
		AllHelped:    s.AllHelped,
		HelpDuration: toJSONDurationStats(s.HelpDuration),
		Students:     make(map[string]jsonStudentStat),
		Tutors:       make(map[string]jsonTutorStat),
	}

	for id, st := range s.Students {
		output.Students[strconv.Itoa(id)] = jsonStudentStat{
			Visits:     st.Visits,
			Rejections: st.Rejections,
			Helps:      st.Helps,
			WorkUnits:  st.WorkUnits,
			Done:       st.Done,
		}
	}
	for id, tu := range s.Tutors {
		output.Tutors[strconv.Itoa(id)] = jsonTutorStat{Sessions: tu.Sessions, HelpUnits: tu.HelpUnits}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output) // stdout errors are unrecoverable
}

type jsonDurationStats struct {
	Count int    `json:"count"`
	Min   string `json:"min"`
	Max   string `json:"max"`
	Avg   string `json:"avg"`
}

type jsonStudentStat struct {
	Visits     int  `json:"visits"`
	Rejections int  `json:"rejections"`
	Helps      int  `json:"helps"`
	WorkUnits  int  `json:"workUnits"`
	Done       bool `json:"done"`
}

type jsonTutorStat struct {
	Sessions  int `json:"sessions"`
	HelpUnits int `json:"helpUnits"`
}

func toJSONDurationStats(d DurationStats) jsonDurationStats {
	return jsonDurationStats{
		Count: d.Count,
		Min:   FormatDuration(d.Min),
		Max:   FormatDuration(d.Max),
		Avg:   FormatDuration(d.Avg),
	}
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d,%03d", n/1000, n%1000)
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
