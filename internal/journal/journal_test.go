package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLogMixedLineEndings(t *testing.T) {
	log := "add FOO.TXT\r\nremove BAR.TXT\n20260115 512 BAZ.TXT\r\n"
	records, err := ParseLog(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, records, 3)

	add, ok := records[0].(AddRecord)
	require.True(t, ok)
	require.Equal(t, "FOO.TXT", add.Name)

	remove, ok := records[1].(RemoveRecord)
	require.True(t, ok)
	require.Equal(t, "BAR.TXT", remove.Name)

	synced, ok := records[2].(SyncedRecord)
	require.True(t, ok)
	require.Equal(t, "BAZ.TXT", synced.Name)
	require.Equal(t, 20260115, synced.Date)
	require.Equal(t, 512, synced.Minute)
}

func TestParseLogSkipsMalformedLines(t *testing.T) {
	log := "add GOOD.TXT\nnot a valid line at all\nremove GOOD.TXT\n"
	records, err := ParseLog(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestParseLogIgnoresBlankLines(t *testing.T) {
	log := "add A\n\n\nremove B\n"
	records, err := ParseLog(strings.NewReader(log))
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestWriteRecordFormats(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteRecord(&sb, AddRecord{Name: "X"}))
	require.NoError(t, WriteRecord(&sb, RemoveRecord{Name: "Y"}))
	require.NoError(t, WriteRecord(&sb, SyncedRecord{Name: "Z", Date: 20260101, Minute: 90}))
	require.Equal(t, "add X\r\nremove Y\r\n20260101 90 Z\r\n", sb.String())
}
