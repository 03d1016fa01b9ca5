package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/aulavista/horarios-api/pkg/errors"
)

func TestTeacherServiceAddAndList(t *testing.T) {
	f := newFixture(t, nil)
	svc := NewTeacherService(f.data, nil)
	ctx := context.Background()

	teacher, err := svc.Add(ctx, "Carlos Ruiz")
	require.NoError(t, err)
	assert.NotEmpty(t, teacher.ID)
	assert.Equal(t, "CARLO", teacher.Code)

	_, err = svc.Add(ctx, "Ana Gil")
	require.NoError(t, err)

	list := svc.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "Ana Gil", list[0].Name)
	assert.Equal(t, "Carlos Ruiz", list[1].Name)
}

func TestTeacherServiceRejectsDuplicateName(t *testing.T) {
	f := newFixture(t, nil)
	svc := NewTeacherService(f.data, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "Carlos Ruiz")
	require.NoError(t, err)

	_, err = svc.Add(ctx, "Carlos Ruiz")
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateName))
}

func TestTeacherServiceRenameKeepsID(t *testing.T) {
	f := newFixture(t, nil)
	svc := NewTeacherService(f.data, nil)
	ctx := context.Background()

	teacher, err := svc.Add(ctx, "Carlos Ruiz")
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, teacher.ID, "Carlos Ruiz Soler")
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, renamed.ID)
	assert.Equal(t, "Carlos Ruiz Soler", renamed.Name)
}

func TestTeacherServiceRenameDoesNotCascade(t *testing.T) {
	f := newFixture(t, nil)
	teacher := f.addTeacher(t, "Carlos Ruiz")
	f.addGroup(t, "1A")
	f.assignSubject(t, "1A", "Lengua", teacher.ID, 4)

	svc := NewTeacherService(f.data, nil)
	_, err := svc.Rename(context.Background(), teacher.ID, "C. Ruiz")
	require.NoError(t, err)

	f.data.mu.RLock()
	defer f.data.mu.RUnlock()
	assert.Equal(t, teacher.ID, f.data.groups["1A"].Subjects["Lengua"].TeacherID)
}

func TestTeacherServiceDeleteRejectedWhileReferenced(t *testing.T) {
	f := newFixture(t, nil)
	teacher := f.addTeacher(t, "Carlos Ruiz")
	f.addGroup(t, "1A")
	f.assignSubject(t, "1A", "Lengua", teacher.ID, 4)

	svc := NewTeacherService(f.data, nil)
	err := svc.Delete(context.Background(), teacher.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrTeacherInUse))

	groups := NewGroupService(f.data, nil)
	_, err = groups.RemoveSubjectRequirement(context.Background(), "1A", "Lengua")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), teacher.ID))
	assert.Empty(t, svc.List(context.Background()))
}

func TestTeacherServiceDeleteUnknown(t *testing.T) {
	f := newFixture(t, nil)
	svc := NewTeacherService(f.data, nil)

	err := svc.Delete(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
