package campaign

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NoDeadlineLabel is shown instead of remaining hours for open-ended campaigns.
const NoDeadlineLabel = "Нет ограничения"

// Column headers in export order.
const (
	HeaderGems       = "Кол-во гемов"
	HeaderURL        = "Ссылка"
	HeaderName       = "Название кампании"
	HeaderTaskCount  = "Кол-во заданий"
	HeaderPrizeTypes = "Тип призов"
	HeaderRemaining  = "Осталось времени (ч.)"
)

var headers = []string{
	HeaderGems,
	HeaderURL,
	HeaderName,
	HeaderTaskCount,
	HeaderPrizeTypes,
	HeaderRemaining,
}

// Headers returns the column headers in export order.
func Headers() []string {
	return append([]string(nil), headers...)
}

var hoursDivisor = decimal.NewFromInt(3600)

// Remaining is the time left until a campaign ends.
type Remaining struct {
	// Hours until the end, rounded to two decimals. Negative once the end
	// time has passed.
	Hours decimal.Decimal

	// NoDeadline is set when the campaign has no end time.
	NoDeadline bool
}

// Value returns the cell value: hours as float64, or NoDeadlineLabel.
func (r Remaining) Value() any {
	if r.NoDeadline {
		return NoDeadlineLabel
	}
	f, _ := r.Hours.Float64()
	return f
}

// String formats the value for display.
func (r Remaining) String() string {
	if r.NoDeadline {
		return NoDeadlineLabel
	}
	return r.Hours.StringFixed(2)
}

// Row is a campaign reshaped for export.
type Row struct {
	Gems       Tier
	URL        *string
	Name       *string
	TaskCount  *int
	PrizeTypes string
	Remaining  Remaining
}

// Values returns the row's cells in Headers order. Absent fields are nil.
func (r Row) Values() []any {
	values := make([]any, 0, len(headers))
	values = append(values, int(r.Gems))
	if r.URL != nil {
		values = append(values, *r.URL)
	} else {
		values = append(values, nil)
	}
	if r.Name != nil {
		values = append(values, *r.Name)
	} else {
		values = append(values, nil)
	}
	if r.TaskCount != nil {
		values = append(values, *r.TaskCount)
	} else {
		values = append(values, nil)
	}
	values = append(values, r.PrizeTypes, r.Remaining.Value())
	return values
}

// Transform reshapes rec into a Row relative to now.
func Transform(rec Record, now time.Time) Row {
	return Row{
		Gems:       rec.Tier(),
		URL:        rec.URL,
		Name:       rec.SpaceName,
		TaskCount:  rec.TaskCount,
		PrizeTypes: strings.Join(rec.PrizeTypes, ", "),
		Remaining:  RemainingUntil(rec.EndTime, now),
	}
}

// TransformAll transforms records in order.
func TransformAll(records []Record, now time.Time) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Transform(rec, now))
	}
	return rows
}

// RemainingUntil computes the hours from now until the epoch-second end time.
// A nil or zero end time means no deadline.
func RemainingUntil(endTime *float64, now time.Time) Remaining {
	if endTime == nil || *endTime == 0 {
		return Remaining{NoDeadline: true}
	}

	seconds := decimal.NewFromFloat(*endTime).Sub(decimal.New(now.UnixNano(), -9))
	return Remaining{Hours: seconds.Div(hoursDivisor).Round(2)}
}
