package service

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"pairjudge_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportFixture() []model.Response {
	submitted := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	r := model.Response{
		AnnotatorID:        11,
		QuestionID:         42,
		OverallWinner:      "a",
		TotalTimeAMs:       15000,
		TotalTimeBMs:       12000,
		VisitCountA:        2,
		VisitCountB:        1,
		VerificationPassed: true,
		SubmittedAt:        submitted,
		Evaluations: []model.DimensionEvaluation{
			{DimensionCode: "clarity", Winner: "a", Notes: "labels are easier to scan quickly", NoteWordCount: 6},
			{DimensionCode: "aesthetics", Winner: "tie", Notes: "both feel equally polished overall", NoteWordCount: 5},
		},
	}
	r.ID = 3
	return []model.Response{r}
}

func TestBuildLongCSV(t *testing.T) {
	data, err := buildLongCSV(exportFixture())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	// 表头 + 每个维度一行
	require.Len(t, rows, 3)
	assert.Equal(t, "dimension", rows[0][4])
	assert.Equal(t, []string{"3", "11", "42", "2026-03-14T09:30:00Z", "clarity", "a", "labels are easier to scan quickly", "6", "a", "15000", "12000"}, rows[1])
	assert.Equal(t, "aesthetics", rows[2][4])
	assert.Equal(t, "tie", rows[2][5])
}

func TestBuildWideCSV(t *testing.T) {
	dims := []model.Dimension{
		{Code: "clarity", Label: "清晰度"},
		{Code: "aesthetics", Label: "美观度"},
		{Code: "usability", Label: "易用性"},
	}

	data, err := buildWideCSV(exportFixture(), dims)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	header, row := rows[0], rows[1]
	assert.Equal(t, "clarity_winner", header[10])
	assert.Equal(t, "clarity_notes", header[11])
	assert.Len(t, row, len(header))

	assert.Equal(t, "a", row[10])
	// 未评价的维度导出为空列
	assert.Equal(t, "", row[14])
	assert.Equal(t, "true", row[9])
}

func TestBuildLongCSVEmpty(t *testing.T) {
	data, err := buildLongCSV(nil)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
