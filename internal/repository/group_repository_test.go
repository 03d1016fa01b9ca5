package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aulavista/horarios-api/internal/models"
	"github.com/aulavista/horarios-api/pkg/blobstore"
)

func noResolve(nameOrID string) string { return nameOrID }

func TestGroupRepositoryLoadEmptyStore(t *testing.T) {
	repo := NewGroupRepository(blobstore.NewMemoryStore(), zap.NewNop())

	groups, err := repo.Load(context.Background(), noResolve)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestGroupRepositoryRoundTrip(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ctx := context.Background()
	repo := NewGroupRepository(store, zap.NewNop())

	groups := map[string]models.Group{
		"1A": {
			Key:     "1A",
			TutorID: "t-1",
			Order:   1,
			Subjects: map[string]models.SubjectRequirement{
				"Mates": {TeacherID: "t-1", WeeklyHours: 4},
			},
		},
	}
	require.NoError(t, repo.Save(ctx, groups))

	loaded, err := repo.Load(ctx, noResolve)
	require.NoError(t, err)
	assert.Equal(t, groups, loaded)
}

func TestGroupRepositoryResolvesLegacyTeacherNames(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ctx := context.Background()
	legacy := `{"1A":{"tutor":"García","orden":1,"subjects":{"Mates":{"teacher":"García","hours":4},"Inglés":{"teacher":"Desconocido","hours":2}}}}`
	require.NoError(t, store.Put(ctx, KeyGroups, []byte(legacy)))

	resolve := func(nameOrID string) string {
		if nameOrID == "García" {
			return "t-garcia"
		}
		return nameOrID
	}

	repo := NewGroupRepository(store, zap.NewNop())
	groups, err := repo.Load(ctx, resolve)
	require.NoError(t, err)
	require.Contains(t, groups, "1A")
	assert.Equal(t, "t-garcia", groups["1A"].TutorID)
	assert.Equal(t, "t-garcia", groups["1A"].Subjects["Mates"].TeacherID)
	// Unknown names survive the upgrade untouched.
	assert.Equal(t, "Desconocido", groups["1A"].Subjects["Inglés"].TeacherID)

	// The upgraded snapshot was written back; a reload needs no resolution.
	again, err := repo.Load(ctx, noResolve)
	require.NoError(t, err)
	assert.Equal(t, groups, again)
}
