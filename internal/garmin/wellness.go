package garmin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	connect "github.com/abrander/garmin-connect"
	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the Garmin Connect proxy the wellness endpoints live under
const DefaultBaseURL = "https://connect.garmin.com/modern/proxy"

const (
	bodyBatteryPath = "/wellness-service/wellness/bodyBattery/reports/daily"
	maxMetricsPath  = "/metrics-service/metrics/maxmet/daily/{start}/{end}"
)

// wellnessAPI reads the wellness endpoints garmin-connect does not wrap.
// Requests carry the session cookie of the authenticated garmin-connect client.
type wellnessAPI struct {
	http      *resty.Client
	sessionID func() string
}

func newWellnessAPI(baseURL string, sessionID func() string) *wellnessAPI {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("nk", "NT").
		SetHeader("Accept", "application/json")

	return &wellnessAPI{http: client, sessionID: sessionID}
}

func (w *wellnessAPI) get(req *resty.Request, path string) ([]byte, error) {
	resp, err := req.
		SetCookie(&http.Cookie{Name: "SESSIONID", Value: w.sessionID()}).
		Get(path)
	if err != nil {
		return nil, err
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusNotFound || status == http.StatusNoContent:
		return nil, connect.ErrNotFound
	case status == http.StatusUnauthorized:
		return nil, connect.ErrNotAuthenticated
	case status == http.StatusForbidden:
		return nil, connect.ErrForbidden
	case resp.IsError():
		return nil, fmt.Errorf("unexpected status code %d", status)
	}
	return resp.Body(), nil
}

// BodyBattery returns the raw daily body battery report list for date
func (w *wellnessAPI) BodyBattery(date time.Time) ([]byte, error) {
	day := date.Format(time.DateOnly)
	return w.get(w.http.R().SetQueryParams(map[string]string{
		"startDate": day,
		"endDate":   day,
	}), bodyBatteryPath)
}

// MaxMetrics returns the raw daily max-metrics list for date
func (w *wellnessAPI) MaxMetrics(date time.Time) ([]byte, error) {
	day := date.Format(time.DateOnly)
	return w.get(w.http.R().SetPathParams(map[string]string{
		"start": day,
		"end":   day,
	}), maxMetricsPath)
}

// BodyBatteryReading is one body battery sample
type BodyBatteryReading struct {
	Timestamp time.Time
	Level     int
}

// BodyBatteryReport is one day's body battery series
type BodyBatteryReport struct {
	Date    string
	Charged int
	Drained int
	// Readings are in ascending timestamp order.
	Readings []BodyBatteryReading
}

type rawBodyBatteryReport struct {
	Date        string `json:"date"`
	Charged     Int    `json:"charged"`
	Drained     Int    `json:"drained"`
	Descriptors []struct {
		Index int    `json:"index"`
		Key   string `json:"key"`
	} `json:"bodyBatteryValueDescriptorDTOList"`
	Values [][]json.RawMessage `json:"bodyBatteryValuesArray"`
}

// DecodeBodyBattery decodes a daily body battery report list. Samples
// without a timestamp or level are dropped.
func DecodeBodyBattery(data []byte) ([]BodyBatteryReport, error) {
	var raw []rawBodyBatteryReport
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode body battery payload: %w", err)
	}

	reports := make([]BodyBatteryReport, 0, len(raw))
	for _, r := range raw {
		tsIndex, levelIndex := 0, 1
		for _, d := range r.Descriptors {
			switch d.Key {
			case "timestamp":
				tsIndex = d.Index
			case "bodyBatteryLevel":
				levelIndex = d.Index
			}
		}

		report := BodyBatteryReport{
			Date:    r.Date,
			Charged: int(r.Charged),
			Drained: int(r.Drained),
		}
		for _, v := range r.Values {
			if tsIndex >= len(v) || levelIndex >= len(v) || string(v[levelIndex]) == "null" {
				continue
			}
			var ts Timestamp
			var level Int
			if err := json.Unmarshal(v[tsIndex], &ts); err != nil || ts.IsZero() {
				continue
			}
			if err := json.Unmarshal(v[levelIndex], &level); err != nil {
				continue
			}
			report.Readings = append(report.Readings, BodyBatteryReading{Timestamp: ts.Time, Level: int(level)})
		}
		sort.Slice(report.Readings, func(i, j int) bool {
			return report.Readings[i].Timestamp.Before(report.Readings[j].Timestamp)
		})
		reports = append(reports, report)
	}
	return reports, nil
}

// MaxMetrics is the VO2max estimate of one day
type MaxMetrics struct {
	CalendarDate string
	// VO2Max and CyclingVO2Max are 0 when Garmin has no estimate.
	VO2Max        float64
	CyclingVO2Max float64
	FitnessAge    int
}

type rawVO2Max struct {
	CalendarDate string   `json:"calendarDate"`
	Precise      *float64 `json:"vo2MaxPreciseValue"`
	Value        *float64 `json:"vo2MaxValue"`
	FitnessAge   Int      `json:"fitnessAge"`
}

func (v *rawVO2Max) value() float64 {
	switch {
	case v == nil:
		return 0
	case v.Precise != nil:
		return *v.Precise
	case v.Value != nil:
		return *v.Value
	default:
		return 0
	}
}

// DecodeMaxMetrics decodes a daily max-metrics list. Entries with neither
// a running nor a cycling estimate are dropped.
func DecodeMaxMetrics(data []byte) ([]MaxMetrics, error) {
	var raw []struct {
		Generic *rawVO2Max `json:"generic"`
		Cycling *rawVO2Max `json:"cycling"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode max metrics payload: %w", err)
	}

	metrics := make([]MaxMetrics, 0, len(raw))
	for _, r := range raw {
		m := MaxMetrics{
			VO2Max:        r.Generic.value(),
			CyclingVO2Max: r.Cycling.value(),
		}
		if m.VO2Max == 0 && m.CyclingVO2Max == 0 {
			continue
		}
		for _, v := range []*rawVO2Max{r.Generic, r.Cycling} {
			if v == nil {
				continue
			}
			if m.CalendarDate == "" {
				m.CalendarDate = v.CalendarDate
			}
			if m.FitnessAge == 0 {
				m.FitnessAge = int(v.FitnessAge)
			}
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}
