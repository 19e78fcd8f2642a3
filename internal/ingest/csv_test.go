package ingest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tyee-ai/gpu-thermal/internal/ingest"
	"github.com/tyee-ai/gpu-thermal/internal/models"
)

// writeCSV drops a CSV file into a temp dir and returns its path.
func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestReadFile_FailureSample(t *testing.T) {
	path := writeCSV(t, "failures.csv",
		"node,timestamp,gpu_id,temp,avg_temp,reason,date\n"+
			"10.4.21.8,2025-03-17,GPU_28,44.0,28.08,Thermally Failed,2025-03-17\n"+
			"10.4.21.8,2025-03-18,GPU_28,45.0,28.61,Thermally Failed,2025-03-18\n"+
			"10.4.21.8,2025-03-19,GPU_28,45.0,28.6,Thermally Failed,2025-03-19\n")

	events, rejections, err := ingest.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if len(rejections) != 0 {
		t.Fatalf("rejections = %v, want none", rejections)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}

	wantTemps := []float64{44.0, 45.0, 45.0}
	wantAvgs := []float64{28.08, 28.61, 28.6}
	for i, ev := range events {
		if ev.IssueType != models.IssueFailed {
			t.Errorf("row %d issue_type = %s, want failed", i, ev.IssueType)
		}
		if ev.Temperature == nil || *ev.Temperature != wantTemps[i] {
			t.Errorf("row %d temperature = %v, want %v", i, ev.Temperature, wantTemps[i])
		}
		if ev.AvgTemperature == nil || *ev.AvgTemperature != wantAvgs[i] {
			t.Errorf("row %d avg_temperature = %v, want %v", i, ev.AvgTemperature, wantAvgs[i])
		}
		if ev.Node != "10.4.21.8" || ev.GPUID != "GPU_28" {
			t.Errorf("row %d key = %s/%s", i, ev.Node, ev.GPUID)
		}
	}

	want := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	if !events[0].EventTime.Equal(want) {
		t.Errorf("event_time = %v, want %v", events[0].EventTime, want)
	}
	if events[0].EventDate == nil || !events[0].EventDate.Equal(want) {
		t.Errorf("event_date = %v, want %v", events[0].EventDate, want)
	}
}

func TestReadFile_ThrottleFileWithoutAvgTemp(t *testing.T) {
	path := writeCSV(t, "throttled.csv",
		"node,timestamp,gpu_id,temp,reason,date\n"+
			"10.4.21.62,2025-04-15,GPU_22,86.24,Throttled,2025-04-15\n"+
			"10.4.21.62,2025-04-16,GPU_22,91.23,Throttled,2025-04-16\n")

	events, rejections, err := ingest.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if len(rejections) != 0 {
		t.Fatalf("rejections = %v, want none", rejections)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	for i, ev := range events {
		if ev.IssueType != models.IssueThrottled {
			t.Errorf("row %d issue_type = %s, want throttled", i, ev.IssueType)
		}
		if ev.AvgTemperature != nil {
			t.Errorf("row %d avg_temperature = %v, want nil", i, *ev.AvgTemperature)
		}
	}
}

func TestReadFile_HeaderAliases(t *testing.T) {
	// host/device_id/gpu_temp/status are valid aliases for the canonical
	// node/gpu_id/temperature/reason columns.
	path := writeCSV(t, "aliased.csv",
		"Host,Time,Device_ID,GPU_Temp,Status\n"+
			"node-a,2025-06-01,GPU_1,77.5,Throttled\n")

	events, rejections, err := ingest.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if len(rejections) != 0 || len(events) != 1 {
		t.Fatalf("events=%d rejections=%d, want 1/0", len(events), len(rejections))
	}
	ev := events[0]
	if ev.Node != "node-a" || ev.GPUID != "GPU_1" {
		t.Errorf("mapped key = %s/%s", ev.Node, ev.GPUID)
	}
	if ev.Temperature == nil || *ev.Temperature != 77.5 {
		t.Errorf("temperature = %v, want 77.5", ev.Temperature)
	}
}

func TestReadFile_ReasonMappingCaseInsensitive(t *testing.T) {
	path := writeCSV(t, "mixed.csv",
		"node,timestamp,gpu_id,reason\n"+
			"n1,2025-01-01,g1,THROTTLED\n"+
			"n1,2025-01-02,g1,thermal throttling\n"+
			"n1,2025-01-03,g1,Thermally Failed\n"+
			"n1,2025-01-04,g1,THERMAL FAILURE\n")

	events, rejections, err := ingest.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if len(rejections) != 0 {
		t.Fatalf("rejections = %v, want none", rejections)
	}
	want := []models.IssueType{
		models.IssueThrottled,
		models.IssueThrottled,
		models.IssueFailed,
		models.IssueFailed,
	}
	for i, ev := range events {
		if ev.IssueType != want[i] {
			t.Errorf("row %d issue_type = %s, want %s", i, ev.IssueType, want[i])
		}
	}
}

func TestReadFile_RowRejections(t *testing.T) {
	// One bad row of each kind interleaved with valid rows; rejections must
	// never stop the valid rows that follow.
	path := writeCSV(t, "rejects.csv",
		"node,timestamp,gpu_id,temp,reason\n"+
			"n1,2025-01-01,g1,40.0,Throttled\n"+ // line 2: ok
			"n1,2025-01-02,g1,40.0,Overheated\n"+ // line 3: UnknownIssueType
			",2025-01-03,g1,40.0,Throttled\n"+ // line 4: MissingField(node)
			"n1,not-a-date,g1,40.0,Throttled\n"+ // line 5: InvalidTimestamp
			"n1,2025-01-05,g1,hot,Throttled\n"+ // line 6: InvalidNumber
			"n1,2025-01-06,g1,41.0,Throttled\n") // line 7: ok

	events, rejections, err := ingest.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if len(rejections) != 4 {
		t.Fatalf("rejections = %d, want 4: %v", len(rejections), rejections)
	}

	want := []struct {
		line   int
		field  string
		reason ingest.RejectReason
	}{
		{3, "reason", ingest.RejectUnknownIssueType},
		{4, "node", ingest.RejectMissingField},
		{5, "timestamp", ingest.RejectInvalidTimestamp},
		{6, "temperature", ingest.RejectInvalidNumber},
	}
	for i, w := range want {
		got := rejections[i]
		if got.Line != w.line || got.Field != w.field || got.Reason != w.reason {
			t.Errorf("rejection %d = %+v, want %+v", i, got, w)
		}
	}

	// Row order is preserved: the surviving events are lines 2 and 7.
	if !events[0].EventTime.Before(events[1].EventTime) {
		t.Errorf("event order not preserved: %v then %v",
			events[0].EventTime, events[1].EventTime)
	}
}

func TestReadFile_PopulatedNumbersAreNeverNullCoerced(t *testing.T) {
	// A populated but unparsable avg_temp must reject the row rather than
	// silently storing null.
	path := writeCSV(t, "badavg.csv",
		"node,timestamp,gpu_id,temp,avg_temp,reason\n"+
			"n1,2025-02-01,g1,44.0,n/a,Thermally Failed\n")

	events, rejections, err := ingest.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events = %d, want 0", len(events))
	}
	if len(rejections) != 1 || rejections[0].Reason != ingest.RejectInvalidNumber {
		t.Fatalf("rejections = %v, want one InvalidNumber", rejections)
	}
	if rejections[0].Field != "avg_temperature" {
		t.Errorf("field = %s, want avg_temperature", rejections[0].Field)
	}
}

func TestReadFile_MissingRequiredHeaderIsFileError(t *testing.T) {
	path := writeCSV(t, "noheader.csv",
		"node,timestamp,temp\n"+
			"n1,2025-01-01,40.0\n")

	_, _, err := ingest.ReadFile(path)
	if err == nil {
		t.Fatal("expected file-level error for missing required columns")
	}
}

func TestReadFile_UnreadableFileIsFileError(t *testing.T) {
	_, _, err := ingest.ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatal("expected file-level error for missing file")
	}
}

func TestReadFile_FullTimestampsAccepted(t *testing.T) {
	path := writeCSV(t, "timestamps.csv",
		"node,timestamp,gpu_id,reason\n"+
			"n1,2025-01-01 13:45:00,g1,Throttled\n"+
			"n1,2025-01-02T08:00:00Z,g1,Throttled\n")

	events, rejections, err := ingest.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if len(rejections) != 0 || len(events) != 2 {
		t.Fatalf("events=%d rejections=%d, want 2/0", len(events), len(rejections))
	}
	if events[0].EventTime.Hour() != 13 {
		t.Errorf("hour = %d, want 13", events[0].EventTime.Hour())
	}
}
