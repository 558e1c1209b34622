package rowsource

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ignite/software-catalog/internal/datanorm"
)

func TestReadCSV_CommaSeparated(t *testing.T) {
	in := "name,categories,available\n" +
		"Nextcloud,\"Kollaboration, Office\",ja\n" +
		"\n" +
		"Moodle,Lernen\n"

	res, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "categories", "available"}, res.Headers)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, datanorm.Row{"name": "Nextcloud", "categories": "Kollaboration, Office", "available": "ja"}, res.Rows[0])
	assert.Equal(t, datanorm.Row{"name": "Moodle", "categories": "Lernen"}, res.Rows[1])
	assert.Equal(t, []int{2, 4}, res.Lines)
}

func TestReadCSV_SemicolonWithBOM(t *testing.T) {
	in := "\xEF\xBB\xBFName;Kategorien;Verfügbar\nJitsi;Kollaboration, Video;Ja\n"

	res, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Jitsi", res.Rows[0]["Name"])

	row := datanorm.Normalize(res.Rows[0])
	assert.Equal(t, "Jitsi", row.Name)
	assert.Equal(t, []string{"Kollaboration", "Video"}, row.Categories)
	assert.True(t, row.Available)
}

func TestReadCSV_SkipsBlankRecords(t *testing.T) {
	in := "name,url\n , \nA,https://a.example\n"

	res, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "A", res.Rows[0]["name"])
	assert.Equal(t, []int{3}, res.Lines)
}

func TestReadCSV_LinesSurviveBlankAndMultilineRecords(t *testing.T) {
	in := "Name,Kategorien\n" +
		"A,x\n" +
		",\n" +
		",y\n" +
		"\"B\",\"first\nsecond\"\n" +
		"C,z\n"

	res, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, res.Rows, 4)
	assert.Equal(t, "", res.Rows[1]["Name"])
	assert.Equal(t, []int{2, 4, 5, 7}, res.Lines)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrNoHeader))
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Name", "Website", "Zielgruppen"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Nextcloud", "https://nextcloud.com", "Lehrkräfte, Schüler"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"Moodle"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	res, err := Read("catalog.XLSX", &buf)
	require.NoError(t, err)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Nextcloud", res.Rows[0]["Name"])
	assert.Equal(t, "Lehrkräfte, Schüler", res.Rows[0]["Zielgruppen"])
	assert.Equal(t, datanorm.Row{"Name": "Moodle"}, res.Rows[1])
	assert.Equal(t, []int{2, 4}, res.Lines)
}

func TestRead_UnsupportedFormat(t *testing.T) {
	_, err := Read("catalog.pdf", strings.NewReader("%PDF"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", ContentType("a.csv"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ContentType("a.xlsx"))
}
