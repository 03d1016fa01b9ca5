package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/aulavista/horarios-api/pkg/errors"
	"github.com/aulavista/horarios-api/pkg/storage"
)

func exportFixture(t *testing.T) (*fixture, *ExportService) {
	t.Helper()
	f := newFixture(t, nil)
	teacher := f.addTeacher(t, "Carlos Ruiz")
	f.addGroup(t, "1A")
	f.assignSubject(t, "1A", "Lengua", teacher.ID, 4)

	timetable := NewTimetableService(f.data, nil)
	_, err := timetable.Place(context.Background(), placeReq("1A", "Lunes", "09:00", "Lengua", teacher.ID, 1))
	require.NoError(t, err)

	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return f, NewExportService(f.data, local, signer, time.Hour, nil)
}

func TestExportCSVAndDownload(t *testing.T) {
	_, svc := exportFixture(t)
	ctx := context.Background()

	result, err := svc.Export(ctx, "1A", "csv")
	require.NoError(t, err)
	assert.NotEmpty(t, result.ExportID)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "csv", result.Format)

	file, name, err := svc.Download(ctx, result.Token)
	require.NoError(t, err)
	defer file.Close()

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	text := string(content)
	assert.True(t, strings.HasSuffix(name, ".csv"))
	assert.Contains(t, text, "Hora")
	assert.Contains(t, text, "Lengua (Carlos Ruiz)")
}

func TestExportPDF(t *testing.T) {
	_, svc := exportFixture(t)

	result, err := svc.Export(context.Background(), "1A", "pdf")
	require.NoError(t, err)

	file, _, err := svc.Download(context.Background(), result.Token)
	require.NoError(t, err)
	defer file.Close()

	header := make([]byte, 4)
	_, err = io.ReadFull(file, header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(header))
}

func TestExportUnknownGroup(t *testing.T) {
	_, svc := exportFixture(t)

	_, err := svc.Export(context.Background(), "missing", "csv")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestExportBadFormat(t *testing.T) {
	_, svc := exportFixture(t)

	_, err := svc.Export(context.Background(), "1A", "xlsx")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestExportSweepsStaleFiles(t *testing.T) {
	f := newFixture(t, nil)
	teacher := f.addTeacher(t, "Carlos Ruiz")
	f.addGroup(t, "1A")
	f.assignSubject(t, "1A", "Lengua", teacher.ID, 4)

	timetable := NewTimetableService(f.data, nil)
	ctx := context.Background()
	_, err := timetable.Place(ctx, placeReq("1A", "Lunes", "09:00", "Lengua", teacher.ID, 1))
	require.NoError(t, err)

	dir := t.TempDir()
	local, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewExportService(f.data, local, signer, time.Hour, nil)

	stale, err := svc.Export(ctx, "1A", "csv")
	require.NoError(t, err)
	stalePath := filepath.Join(dir, filepath.FromSlash(stale.FileName))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stalePath, old, old))

	// The next export sweeps everything past the retention window.
	fresh, err := svc.Export(ctx, "1A", "pdf")
	require.NoError(t, err)

	_, statErr := os.Stat(stalePath)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dir, filepath.FromSlash(fresh.FileName)))
	assert.NoError(t, statErr)
}

func TestDownloadRejectsTamperedToken(t *testing.T) {
	_, svc := exportFixture(t)

	result, err := svc.Export(context.Background(), "1A", "csv")
	require.NoError(t, err)

	_, _, err = svc.Download(context.Background(), result.Token+"x")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
