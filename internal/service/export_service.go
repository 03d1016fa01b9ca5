package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/models"
	appErrors "github.com/aulavista/horarios-api/pkg/errors"
	"github.com/aulavista/horarios-api/pkg/export"
	"github.com/aulavista/horarios-api/pkg/storage"
)

// ExportService renders a group's weekly timetable into CSV or PDF, stores
// the file locally and hands out short lived signed download tokens.
type ExportService struct {
	data      *DataService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	storage   *storage.LocalStorage
	signer    *storage.SignedURLSigner
	retention time.Duration
	logger    *zap.Logger
}

// ExportResult describes a rendered timetable file.
type ExportResult struct {
	ExportID string
	FileName string
	Format   string
	Token    string
}

// NewExportService constructs an ExportService. Files older than retention
// are swept on every export; once the signed token has expired the file can
// never be downloaded again, so retention normally matches the token TTL.
func NewExportService(data *DataService, store *storage.LocalStorage, signer *storage.SignedURLSigner, retention time.Duration, logger *zap.Logger) *ExportService {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		data:      data,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		storage:   store,
		signer:    signer,
		retention: retention,
		logger:    logger,
	}
}

// Export renders the group's grid in the requested format and returns a
// signed token for the download endpoint.
func (s *ExportService) Export(ctx context.Context, group, format string) (*ExportResult, error) {
	format = strings.ToLower(format)
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	dataset, err := s.buildDataset(group)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch format {
	case "csv":
		payload, err = s.csv.Render(dataset)
	case "pdf":
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("Horario semanal %s", group))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}

	if n := s.CleanupExpired(); n > 0 {
		s.logger.Info("stale export files removed", zap.Int("count", n))
	}

	exportID := uuid.NewString()
	fileName := path.Join("timetables", fmt.Sprintf("%s.%s", exportID, format))
	if _, err := s.storage.Save(fileName, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store export file")
	}

	token, _, err := s.signer.Generate(exportID, fileName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	s.logger.Info("timetable exported",
		zap.String("group", group),
		zap.String("format", format),
		zap.String("export_id", exportID))
	return &ExportResult{ExportID: exportID, FileName: fileName, Format: format, Token: token}, nil
}

// Download verifies the token and opens the export file for streaming.
func (s *ExportService) Download(ctx context.Context, token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file not found")
	}
	return file, path.Base(relPath), nil
}

// CleanupExpired removes export files older than the retention window.
func (s *ExportService) CleanupExpired() int {
	removed, err := s.storage.CleanupOlderThan(s.retention)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
	}
	return len(removed)
}

// buildDataset flattens one group's grid into rows: first column the slot,
// one column per day. Continuation markers render with an arrow so merged
// blocks stay readable in flat tables.
func (s *ExportService) buildDataset(group string) (export.Dataset, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	if !s.data.schedule.HasGroup(group) {
		return export.Dataset{}, appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}

	starts := make(map[string]models.ScheduleItem)
	s.data.schedule.Walk(func(g, day, slot string, items []models.ScheduleItem) {
		if g != group {
			return
		}
		for _, item := range items {
			if item.IsStart() {
				starts[item.ID] = item
			}
		}
	})

	days := s.data.schedule.Days()
	headers := append([]string{"Hora"}, days...)

	var rows []map[string]string
	for _, slot := range s.data.schedule.Slots() {
		row := map[string]string{"Hora": slot}
		for _, day := range days {
			var cells []string
			for _, item := range s.data.schedule.Items(group, day, slot) {
				cells = append(cells, s.describeItemLocked(item, starts))
			}
			row[day] = strings.Join(cells, " / ")
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}, nil
}

func (s *ExportService) describeItemLocked(item models.ScheduleItem, starts map[string]models.ScheduleItem) string {
	if !item.IsStart() {
		if parent, ok := starts[item.ParentID]; ok {
			return "· " + parent.Subject
		}
		return "·"
	}
	label := item.Subject
	if teacher, ok := s.data.teacherByIDLocked(item.TeacherID); ok {
		label = fmt.Sprintf("%s (%s)", item.Subject, teacher.Name)
	}
	return label
}
