package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tyee-ai/gpu-thermal/internal/models"
)

// Canonical column names. Incoming headers are mapped onto these via
// columnAliases before any row is looked at.
const (
	colNode           = "node"
	colTimestamp      = "timestamp"
	colGPUID          = "gpu_id"
	colTemperature    = "temperature"
	colAvgTemperature = "avg_temperature"
	colReason         = "reason"
	colDate           = "date"
)

// columnAliases maps each canonical column to the header spellings seen in
// the wild. Matching is case-insensitive on trimmed header cells; the first
// alias present in the header wins.
var columnAliases = map[string][]string{
	colNode:           {"node", "host", "server"},
	colTimestamp:      {"timestamp", "time", "datetime"},
	colGPUID:          {"gpu_id", "gpu", "device_id", "device"},
	colTemperature:    {"temp", "temperature", "gpu_temp", "thermal"},
	colAvgTemperature: {"avg_temp", "average_temp", "avg_temperature"},
	colReason:         {"reason", "issue_type", "type", "status", "event_type"},
	colDate:           {"date", "event_date"},
}

// requiredColumns must all be resolvable from the header; a header missing
// any of them fails the whole file.
var requiredColumns = []string{colNode, colTimestamp, colGPUID, colReason}

// RejectReason classifies why a single row was refused.
type RejectReason string

const (
	RejectMissingField     RejectReason = "MissingField"
	RejectUnknownIssueType RejectReason = "UnknownIssueType"
	RejectInvalidTimestamp RejectReason = "InvalidTimestamp"
	RejectInvalidNumber    RejectReason = "InvalidNumber"
)

// Rejection describes one refused row. Line is 1-based and counts the
// header, so the first data row is line 2.
type Rejection struct {
	Line   int          `json:"line"`
	Field  string       `json:"field"`
	Reason RejectReason `json:"reason"`
}

func (r Rejection) String() string {
	return fmt.Sprintf("line %d: %s (%s)", r.Line, r.Reason, r.Field)
}

// issueTypeRules maps free-text reason values onto issue types by
// case-insensitive substring match. The table is ordered: the first rule
// whose substring appears in the reason wins. Unmatched reasons are
// rejected, never defaulted.
var issueTypeRules = []struct {
	substr string
	issue  models.IssueType
}{
	{"throttl", models.IssueThrottled},
	{"fail", models.IssueFailed},
}

func mapIssueType(reason string) (models.IssueType, bool) {
	lowered := strings.ToLower(reason)
	for _, rule := range issueTypeRules {
		if strings.Contains(lowered, rule.substr) {
			return rule.issue, true
		}
	}
	return "", false
}

// eventTimeLayouts are tried in order when parsing timestamp/date cells.
// Observed inputs carry date granularity; full timestamps are accepted too.
var eventTimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseEventTime(raw string) (time.Time, error) {
	for _, layout := range eventTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable time %q", raw)
}

// headerIndex maps canonical column names onto record positions.
type headerIndex map[string]int

// resolveHeader maps the raw header row onto canonical columns. A header
// missing any required column is a file-level error, not a row rejection.
func resolveHeader(header []string) (headerIndex, error) {
	byName := make(map[string]int, len(header))
	for i, cell := range header {
		byName[strings.ToLower(strings.TrimSpace(cell))] = i
	}

	idx := make(headerIndex, len(columnAliases))
	for canonical, aliases := range columnAliases {
		for _, alias := range aliases {
			if i, ok := byName[alias]; ok {
				idx[canonical] = i
				break
			}
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// field returns the trimmed cell for a canonical column, or "" when the
// column is unmapped or the record is short.
func (idx headerIndex) field(record []string, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// normalizeRow turns one raw record into a ThermalEvent candidate or a
// rejection. Populated numeric cells that fail to parse reject the row;
// they are never coerced to null.
func normalizeRow(idx headerIndex, record []string, line int) (models.ThermalEvent, *Rejection) {
	var ev models.ThermalEvent

	ev.Node = idx.field(record, colNode)
	ev.GPUID = idx.field(record, colGPUID)
	ev.Reason = idx.field(record, colReason)
	tsRaw := idx.field(record, colTimestamp)

	for _, req := range []struct{ col, val string }{
		{colNode, ev.Node},
		{colTimestamp, tsRaw},
		{colGPUID, ev.GPUID},
		{colReason, ev.Reason},
	} {
		if req.val == "" {
			return ev, &Rejection{Line: line, Field: req.col, Reason: RejectMissingField}
		}
	}

	issue, ok := mapIssueType(ev.Reason)
	if !ok {
		return ev, &Rejection{Line: line, Field: colReason, Reason: RejectUnknownIssueType}
	}
	ev.IssueType = issue

	ts, err := parseEventTime(tsRaw)
	if err != nil {
		return ev, &Rejection{Line: line, Field: colTimestamp, Reason: RejectInvalidTimestamp}
	}
	ev.EventTime = ts

	if raw := idx.field(record, colTemperature); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ev, &Rejection{Line: line, Field: colTemperature, Reason: RejectInvalidNumber}
		}
		ev.Temperature = &v
	}
	if raw := idx.field(record, colAvgTemperature); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ev, &Rejection{Line: line, Field: colAvgTemperature, Reason: RejectInvalidNumber}
		}
		ev.AvgTemperature = &v
	}
	if raw := idx.field(record, colDate); raw != "" {
		d, err := parseEventTime(raw)
		if err != nil {
			return ev, &Rejection{Line: line, Field: colDate, Reason: RejectInvalidTimestamp}
		}
		ev.EventDate = &d
	}

	return ev, nil
}

// ReadFile loads and normalizes a thermal-event CSV. It returns the valid
// candidates in original row order plus the per-row rejections. The error
// return is reserved for file-level failures: unreadable file, missing
// header, header without the required columns.
func ReadFile(path string) ([]models.ThermalEvent, []Rejection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1 // allow variable columns for safety

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	idx, err := resolveHeader(header)
	if err != nil {
		return nil, nil, fmt.Errorf("csv %q: %w", path, err)
	}

	var (
		events     []models.ThermalEvent
		rejections []Rejection
	)
	line := 1 // 1-based, header was line 1
	for {
		line++
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("csv line %d: %w", line, err)
		}

		ev, rej := normalizeRow(idx, record, line)
		if rej != nil {
			rejections = append(rejections, *rej)
			continue
		}
		events = append(events, ev)
	}

	return events, rejections, nil
}
