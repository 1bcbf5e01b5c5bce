package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"pairjudge_backend/internal/model"
	"pairjudge_backend/internal/repository"
	"pairjudge_backend/internal/util"

	"gorm.io/gorm"
)

// ExportResult 导出产物
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService 问卷结果的 CSV 导出。长表：每行一个(提交,维度)；
// 宽表：每行一次提交，维度展开成列。
type ExportService struct {
	ResponseRepo      *repository.ResponseRepository
	QuestionnaireRepo *repository.QuestionnaireRepository
	DimensionRepo     *repository.DimensionRepository
}

func NewExportService(
	responseRepo *repository.ResponseRepository,
	questionnaireRepo *repository.QuestionnaireRepository,
	dimensionRepo *repository.DimensionRepository,
) *ExportService {
	return &ExportService{
		ResponseRepo:      responseRepo,
		QuestionnaireRepo: questionnaireRepo,
		DimensionRepo:     dimensionRepo,
	}
}

func (s *ExportService) ExportCSV(questionnaireID uint, format string) (*ExportResult, error) {
	if format == "" {
		format = "long"
	}

	if _, err := s.QuestionnaireRepo.FindByID(questionnaireID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionnaireNotFound
		}
		return nil, err
	}

	responses, err := s.ResponseRepo.ListByQuestionnaire(questionnaireID)
	if err != nil {
		return nil, err
	}

	switch format {
	case "long":
		data, err := buildLongCSV(responses)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("questionnaire_%d_long.csv", questionnaireID),
			ContentType: util.MimeCSV + "; charset=utf-8",
			Data:        data,
		}, nil
	case "wide":
		dims, err := s.DimensionRepo.ListEnabled()
		if err != nil {
			return nil, err
		}
		data, err := buildWideCSV(responses, dims)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("questionnaire_%d_wide.csv", questionnaireID),
			ContentType: util.MimeCSV + "; charset=utf-8",
			Data:        data,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

func buildLongCSV(responses []model.Response) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"response_id", "annotator_id", "question_id", "submitted_at",
		"dimension", "winner", "notes", "note_word_count",
		"overall_winner", "total_time_a_ms", "total_time_b_ms",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range responses {
		for _, e := range r.Evaluations {
			row := []string{
				strconv.FormatUint(uint64(r.ID), 10),
				strconv.FormatUint(uint64(r.AnnotatorID), 10),
				strconv.FormatUint(uint64(r.QuestionID), 10),
				r.SubmittedAt.Format(time.RFC3339),
				e.DimensionCode,
				e.Winner,
				e.Notes,
				strconv.Itoa(e.NoteWordCount),
				r.OverallWinner,
				strconv.FormatInt(r.TotalTimeAMs, 10),
				strconv.FormatInt(r.TotalTimeBMs, 10),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func buildWideCSV(responses []model.Response, dims []model.Dimension) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"response_id", "annotator_id", "question_id", "submitted_at",
		"overall_winner", "total_time_a_ms", "total_time_b_ms",
		"visit_count_a", "visit_count_b", "verification_passed",
	}
	for _, d := range dims {
		header = append(header, d.Code+"_winner", d.Code+"_notes")
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range responses {
		byDim := make(map[string]model.DimensionEvaluation, len(r.Evaluations))
		for _, e := range r.Evaluations {
			byDim[e.DimensionCode] = e
		}

		row := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			strconv.FormatUint(uint64(r.AnnotatorID), 10),
			strconv.FormatUint(uint64(r.QuestionID), 10),
			r.SubmittedAt.Format(time.RFC3339),
			r.OverallWinner,
			strconv.FormatInt(r.TotalTimeAMs, 10),
			strconv.FormatInt(r.TotalTimeBMs, 10),
			strconv.Itoa(r.VisitCountA),
			strconv.Itoa(r.VisitCountB),
			strconv.FormatBool(r.VerificationPassed),
		}
		for _, d := range dims {
			e := byDim[d.Code]
			row = append(row, e.Winner, e.Notes)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
