package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/sstent/garminnotion/internal/sleepsync"
)

// Property names of the sleep database
const (
	PropDate       = "Date"
	PropTimes      = "Times"
	PropLongDate   = "Long Date"
	PropFullDate   = "Full Date/Time"
	PropTotalSleep = "Total Sleep"
	PropLightSleep = "Light Sleep"
	PropDeepSleep  = "Deep Sleep"
	PropREMSleep   = "REM Sleep"
	PropAwakeTime  = "Awake Time"
	PropRestingHR  = "Resting HR"

	sleepIcon       = "😴"
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

// SleepTable is a Notion database of sleep records. It implements
// sleepsync.Sink and sleepsync.Lister.
type SleepTable struct {
	client     *Client
	databaseID string
}

// NewSleepTable binds client to the sleep database databaseID
func NewSleepTable(client *Client, databaseID string) *SleepTable {
	return &SleepTable{client: client, databaseID: databaseID}
}

// FindByDate returns the first page whose Long Date equals date
func (t *SleepTable) FindByDate(ctx context.Context, date string) (*sleepsync.Record, error) {
	result, err := t.client.QueryDatabase(ctx, t.databaseID, QueryRequest{
		Filter: &Filter{Property: PropLongDate, Date: &DateCondition{Equals: date}},
	})
	if err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, nil
	}
	record := RecordFromPage(result.Results[0])
	return &record, nil
}

// Create adds a page for record
func (t *SleepTable) Create(ctx context.Context, record sleepsync.Record) error {
	_, err := t.client.CreatePage(ctx, CreatePageRequest{
		Parent:     Parent{DatabaseID: t.databaseID},
		Properties: RecordProperties(record),
		Icon:       EmojiIcon(sleepIcon),
	})
	if err != nil {
		return fmt.Errorf("failed to create sleep entry for %s: %w", record.LongDate, err)
	}
	return nil
}

// List returns the records with from <= Long Date <= to, oldest first.
// Empty bounds are open.
func (t *SleepTable) List(ctx context.Context, from, to string) ([]sleepsync.Record, error) {
	var conditions []Filter
	if from != "" {
		conditions = append(conditions, Filter{Property: PropLongDate, Date: &DateCondition{OnOrAfter: from}})
	}
	if to != "" {
		conditions = append(conditions, Filter{Property: PropLongDate, Date: &DateCondition{OnOrBefore: to}})
	}

	req := QueryRequest{
		Sorts:    []Sort{{Property: PropLongDate, Direction: "ascending"}},
		PageSize: 100,
	}
	switch len(conditions) {
	case 1:
		req.Filter = &conditions[0]
	case 2:
		req.Filter = &Filter{And: conditions}
	}

	pages, err := t.client.QueryAll(ctx, t.databaseID, req)
	if err != nil {
		return nil, err
	}

	records := make([]sleepsync.Record, 0, len(pages))
	for _, page := range pages {
		records = append(records, RecordFromPage(page))
	}
	return records, nil
}

// RecordProperties maps a record onto the sleep database properties
func RecordProperties(r sleepsync.Record) Properties {
	props := Properties{
		PropDate:       TitleProperty(r.Title),
		PropTimes:      TextProperty(r.Times),
		PropTotalSleep: TextProperty(r.TotalSleep),
		PropLightSleep: TextProperty(r.LightSleep),
		PropDeepSleep:  TextProperty(r.DeepSleep),
		PropREMSleep:   TextProperty(r.REMSleep),
		PropAwakeTime:  TextProperty(r.AwakeTime),
		PropRestingHR:  NumberProperty(float64(r.RestingHR)),
	}
	if r.LongDate != "" {
		props[PropLongDate] = DateProperty(r.LongDate, "")
	}
	if !r.Start.IsZero() {
		props[PropFullDate] = DateProperty(formatTimestamp(r.Start), formatTimestamp(r.End))
	}
	return props
}

// RecordFromPage reads a record back from a sleep database page
func RecordFromPage(page Page) sleepsync.Record {
	p := page.Properties
	r := sleepsync.Record{
		Title:      p[PropDate].PlainText(),
		Times:      p[PropTimes].PlainText(),
		TotalSleep: p[PropTotalSleep].PlainText(),
		LightSleep: p[PropLightSleep].PlainText(),
		DeepSleep:  p[PropDeepSleep].PlainText(),
		REMSleep:   p[PropREMSleep].PlainText(),
		AwakeTime:  p[PropAwakeTime].PlainText(),
	}
	if d := p[PropLongDate].Date; d != nil {
		r.LongDate = d.Start
		if len(r.LongDate) > len(time.DateOnly) {
			r.LongDate = r.LongDate[:len(time.DateOnly)]
		}
	}
	if d := p[PropFullDate].Date; d != nil {
		r.Start = parseTimestamp(d.Start)
		r.End = parseTimestamp(d.End)
	}
	if n := p[PropRestingHR].Number; n != nil {
		r.RestingHR = int(*n)
	}
	return r
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
