// Package campaign holds the SoGraph campaign record, its gem tier and the
// localized row it is exported as.
package campaign

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one campaign as returned by the list endpoint. Every field is
// optional: the API omits or nulls fields freely and a missing field must not
// fail the page.
type Record struct {
	IsVerify    Flag     `json:"is_verify"`
	IsRecommend Flag     `json:"is_recommend"`
	EndTime     *float64 `json:"end_time"`
	URL         *string  `json:"url"`
	SpaceName   *string  `json:"space_name"`
	TaskCount   *int     `json:"task_count"`
	PrizeTypes  []string `json:"prize_types"`
}

// Flag is a boolean that also accepts 0/1 and "true"/"false" and treats
// null or anything unrecognised as false.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = n != 0
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := strconv.ParseBool(strings.TrimSpace(s))
		*f = Flag(err == nil && parsed)
		return nil
	}

	*f = false
	return nil
}

// Tier is the gem reward weight of a campaign.
type Tier int

// Gem tiers.
const (
	TierBasic       Tier = 1
	TierVerified    Tier = 10
	TierRecommended Tier = 20
)

// String returns the tier as a sheet name.
func (t Tier) String() string {
	return strconv.Itoa(int(t))
}

// Tier derives the gem tier: 20 for verified and recommended, 10 for
// verified only, 1 otherwise.
func (r Record) Tier() Tier {
	if r.IsVerify && r.IsRecommend {
		return TierRecommended
	}
	if r.IsVerify {
		return TierVerified
	}
	return TierBasic
}

// Page is the payload of one campaign list response.
type Page struct {
	Data *PageData `json:"data"`
}

// PageData carries the total record count and one page of records.
type PageData struct {
	Total *int              `json:"total"`
	Data  []json.RawMessage `json:"data"`
}

// TotalOrZero returns the reported total, or 0 when it is absent.
func (p Page) TotalOrZero() int {
	if p.Data == nil || p.Data.Total == nil {
		return 0
	}
	return *p.Data.Total
}

// Records decodes the page's records one by one. A record that is not a JSON
// object (null, a string) is skipped; type mismatches inside a record leave
// that field empty.
func (p Page) Records() []Record {
	if p.Data == nil {
		return nil
	}

	records := make([]Record, 0, len(p.Data.Data))
	for _, raw := range p.Data.Data {
		rec, ok := DecodeRecord(raw)
		if ok {
			records = append(records, rec)
		}
	}
	return records
}

// DecodeRecord decodes a single record permissively.
func DecodeRecord(raw json.RawMessage) (Record, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Record{}, false
	}

	var rec Record
	decodeField(fields, "is_verify", &rec.IsVerify)
	decodeField(fields, "is_recommend", &rec.IsRecommend)
	decodeField(fields, "end_time", &rec.EndTime)
	decodeField(fields, "url", &rec.URL)
	decodeField(fields, "space_name", &rec.SpaceName)
	decodeField(fields, "task_count", &rec.TaskCount)

	var prizes []any
	decodeField(fields, "prize_types", &prizes)
	for _, p := range prizes {
		switch v := p.(type) {
		case string:
			rec.PrizeTypes = append(rec.PrizeTypes, v)
		case nil:
		default:
			b, _ := json.Marshal(v)
			rec.PrizeTypes = append(rec.PrizeTypes, string(b))
		}
	}

	return rec, true
}

// decodeField assigns fields[name] to dst only if it decodes cleanly.
func decodeField[T any](fields map[string]json.RawMessage, name string, dst *T) {
	raw, ok := fields[name]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err == nil {
		*dst = v
	}
}
