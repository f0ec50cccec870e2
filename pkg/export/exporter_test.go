package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/sograph-client/pkg/campaign"
	"github.com/Sternrassler/sograph-client/pkg/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func row(tier campaign.Tier, name string) campaign.Row {
	return campaign.Row{
		Gems:       tier,
		URL:        strPtr("https://sograph.xyz/" + name),
		Name:       strPtr(name),
		TaskCount:  intPtr(3),
		PrizeTypes: "token, nft",
		Remaining:  campaign.Remaining{Hours: decimal.RequireFromString("1.5")},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestFileName(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("MSK", 3*3600))
	assert.Equal(t, "result_04_03_2026_02_06_07.xlsx", FileName(ts))
}

func TestGroup_FirstSeenOrder(t *testing.T) {
	rows := []campaign.Row{
		row(campaign.TierVerified, "a"),
		row(campaign.TierRecommended, "b"),
		row(campaign.TierVerified, "c"),
		row(campaign.TierBasic, "d"),
	}

	wb := Group(rows)

	assert.Equal(t, []campaign.Tier{campaign.TierVerified, campaign.TierRecommended, campaign.TierBasic}, wb.Tiers)
	require.Len(t, wb.Rows[campaign.TierVerified], 2)
	assert.Equal(t, "a", *wb.Rows[campaign.TierVerified][0].Name)
	assert.Equal(t, "c", *wb.Rows[campaign.TierVerified][1].Name)
	assert.Equal(t, 4, wb.Len())
}

func TestExport_SheetsPerTier(t *testing.T) {
	dir := t.TempDir()
	exp := New(dir).WithClock(fixedClock(time.Date(2026, 10, 17, 9, 30, 15, 0, time.UTC)))

	rows := []campaign.Row{
		row(campaign.TierRecommended, "a"),
		row(campaign.TierVerified, "b"),
		row(campaign.TierRecommended, "c"),
	}

	path, err := exp.Export(rows)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "result_17_10_2026_09_30_15.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"20", "10"}, f.GetSheetList(), "default sheet must be removed")

	top, err := f.GetRows("20")
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, campaign.Headers(), top[0])
	assert.Equal(t, []string{"20", "https://sograph.xyz/a", "a", "3", "token, nft", "1.5"}, top[1])
	assert.Equal(t, "c", top[2][2])

	verified, err := f.GetRows("10")
	require.NoError(t, err)
	require.Len(t, verified, 2)
	assert.Equal(t, "b", verified[1][2])
}

func TestExport_NullFieldsAndNoDeadline(t *testing.T) {
	dir := t.TempDir()
	exp := New(dir)

	path, err := exp.Export([]campaign.Row{{
		Gems:      campaign.TierBasic,
		Remaining: campaign.Remaining{NoDeadline: true},
	}})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "", "", "", "", campaign.NoDeadlineLabel}, rows[1])
}

func TestExport_NoRows(t *testing.T) {
	dir := t.TempDir()

	path, err := New(dir).Export(nil)
	assert.ErrorIs(t, err, ErrNoRows)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport_DistinctFilesPerRun(t *testing.T) {
	dir := t.TempDir()
	clock := fixedClock(time.Date(2026, 10, 17, 9, 30, 15, 0, time.UTC))
	exp := New(dir).WithClock(clock)

	rows := []campaign.Row{row(campaign.TierVerified, "a")}

	first, err := exp.Export(rows)
	require.NoError(t, err)
	second, err := exp.Export(rows)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, filepath.Join(dir, "result_17_10_2026_09_30_15_1.xlsx"), second)

	for _, p := range []string{first, second} {
		f, err := excelize.OpenFile(p)
		require.NoError(t, err)
		got, err := f.GetRows("10")
		require.NoError(t, err)
		assert.Len(t, got, 2)
		f.Close()
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")
}

func TestExport_ConcurrentSameSecond(t *testing.T) {
	dir := t.TempDir()
	exp := New(dir).WithClock(fixedClock(time.Date(2026, 10, 17, 9, 30, 15, 0, time.UTC)))
	rows := []campaign.Row{row(campaign.TierBasic, "a")}

	const runs = 8
	paths := make([]string, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := exp.Export(rows)
			assert.NoError(t, err)
			paths[i] = p
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, runs)
	for _, p := range paths {
		assert.False(t, seen[p], "path %s returned twice", p)
		seen[p] = true
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, runs)
}

func TestExport_KeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	clock := fixedClock(time.Date(2026, 10, 17, 9, 30, 15, 0, time.UTC))
	taken := filepath.Join(dir, FileName(clock()))
	require.NoError(t, os.WriteFile(taken, []byte("keep"), 0o644))

	path, err := New(dir).WithClock(clock).Export([]campaign.Row{row(campaign.TierBasic, "a")})
	require.NoError(t, err)
	assert.NotEqual(t, taken, path)

	data, err := os.ReadFile(taken)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestExport_LogsSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	logging.Setup(logging.Config{Level: logging.LevelInfo, Output: buf})
	t.Cleanup(func() { logging.Setup(logging.DefaultConfig()) })

	rows := []campaign.Row{row(campaign.TierBasic, "a"), row(campaign.TierVerified, "b")}
	path, err := New(t.TempDir()).Export(rows)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "exporter", line["component"])
	assert.Equal(t, path, line["path"])
	assert.Equal(t, float64(2), line["sheets"])
	assert.Equal(t, float64(2), line["rows"])
}

func TestExport_MissingDirectory(t *testing.T) {
	exp := New(filepath.Join(t.TempDir(), "missing"))

	_, err := exp.Export([]campaign.Row{row(campaign.TierBasic, "a")})
	assert.Error(t, err)
}

func TestBuild_Empty(t *testing.T) {
	_, err := Group(nil).Build()
	assert.ErrorIs(t, err, ErrNoRows)
}
