package notion

import (
	"context"
	"fmt"

	"github.com/sstent/garminnotion/internal/sleepsync"
	"github.com/sstent/garminnotion/internal/wellness"
)

// Property names of the body battery and VO2max databases
const (
	PropLatest        = "Latest"
	PropLatestAt      = "Latest At"
	PropCharged       = "Charged"
	PropDrained       = "Drained"
	PropMax           = "Max"
	PropMin           = "Min"
	PropRange         = "Range"
	PropVO2Max        = "VO2 Max"
	PropCyclingVO2Max = "Cycling VO2 Max"
	PropFitnessAge    = "Fitness Age"

	bodyBatteryIcon = "🔋"
	vo2MaxIcon      = "🫁"
)

// hasDate reports whether databaseID has a page whose Long Date is date
func (c *Client) hasDate(ctx context.Context, databaseID, date string) (bool, error) {
	result, err := c.QueryDatabase(ctx, databaseID, QueryRequest{
		Filter:   &Filter{Property: PropLongDate, Date: &DateCondition{Equals: date}},
		PageSize: 1,
	})
	if err != nil {
		return false, err
	}
	return len(result.Results) > 0, nil
}

func dayProperties(date string) Properties {
	return Properties{
		PropDate:     TitleProperty(sleepsync.FormatTitle(date)),
		PropLongDate: DateProperty(date, ""),
	}
}

// BodyBatteryTable is a Notion database of daily body battery summaries
type BodyBatteryTable struct {
	client     *Client
	databaseID string
}

// NewBodyBatteryTable binds client to the body battery database databaseID
func NewBodyBatteryTable(client *Client, databaseID string) *BodyBatteryTable {
	return &BodyBatteryTable{client: client, databaseID: databaseID}
}

func (t *BodyBatteryTable) Exists(ctx context.Context, date string) (bool, error) {
	return t.client.hasDate(ctx, t.databaseID, date)
}

func (t *BodyBatteryTable) Create(ctx context.Context, s wellness.BodyBattery) error {
	props := dayProperties(s.Date)
	props[PropCharged] = NumberProperty(float64(s.Charged))
	props[PropDrained] = NumberProperty(float64(s.Drained))
	if s.HasReadings() {
		props[PropLatest] = NumberProperty(float64(s.Latest.Level))
		props[PropLatestAt] = DateProperty(formatTimestamp(s.Latest.Timestamp), "")
		props[PropMax] = NumberProperty(float64(s.Max))
		props[PropMin] = NumberProperty(float64(s.Min))
		props[PropRange] = NumberProperty(float64(s.Range()))
	}

	_, err := t.client.CreatePage(ctx, CreatePageRequest{
		Parent:     Parent{DatabaseID: t.databaseID},
		Properties: props,
		Icon:       EmojiIcon(bodyBatteryIcon),
	})
	if err != nil {
		return fmt.Errorf("failed to create body battery entry for %s: %w", s.Date, err)
	}
	return nil
}

// VO2MaxTable is a Notion database of daily VO2max estimates
type VO2MaxTable struct {
	client     *Client
	databaseID string
}

// NewVO2MaxTable binds client to the VO2max database databaseID
func NewVO2MaxTable(client *Client, databaseID string) *VO2MaxTable {
	return &VO2MaxTable{client: client, databaseID: databaseID}
}

func (t *VO2MaxTable) Exists(ctx context.Context, date string) (bool, error) {
	return t.client.hasDate(ctx, t.databaseID, date)
}

func (t *VO2MaxTable) Create(ctx context.Context, v wellness.VO2Max) error {
	props := dayProperties(v.Date)
	if v.VO2Max > 0 {
		props[PropVO2Max] = NumberProperty(v.VO2Max)
	}
	if v.CyclingVO2Max > 0 {
		props[PropCyclingVO2Max] = NumberProperty(v.CyclingVO2Max)
	}
	if v.FitnessAge > 0 {
		props[PropFitnessAge] = NumberProperty(float64(v.FitnessAge))
	}

	_, err := t.client.CreatePage(ctx, CreatePageRequest{
		Parent:     Parent{DatabaseID: t.databaseID},
		Properties: props,
		Icon:       EmojiIcon(vo2MaxIcon),
	})
	if err != nil {
		return fmt.Errorf("failed to create VO2 max entry for %s: %w", v.Date, err)
	}
	return nil
}
