package coordinator_test

import (
	"testing"

	"github.com/choreboard-dev/choreboard/internal/catalog"
	"github.com/choreboard-dev/choreboard/internal/coordinator"
	"github.com/choreboard-dev/choreboard/internal/models"
	"github.com/choreboard-dev/choreboard/internal/services"
	"github.com/choreboard-dev/choreboard/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	coord     *coordinator.Coordinator
	members   *services.MembershipService
	schedule  *services.ScheduleService
	tasks     *services.TaskService
	apartment *models.Apartment
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	database := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	members := services.NewMembershipService(database, logger)
	tasks := services.NewTaskService(database, logger)
	schedule := services.NewScheduleService(database, logger, tasks)

	return fixture{
		db:        database,
		coord:     coordinator.New(database, logger, members, schedule, tasks),
		members:   members,
		schedule:  schedule,
		tasks:     tasks,
		apartment: testutil.CreateApartment(t, database, 4),
	}
}

func (f fixture) join(t *testing.T, username string) *models.User {
	t.Helper()

	user := testutil.CreateUser(t, f.db, username)

	_, err := f.members.Join(user.ID, f.apartment.ID)
	require.NoError(t, err)

	return user
}

func TestRefreshAssemblesRequestedScopes(t *testing.T) {
	f := newFixture(t)
	alice := f.join(t, "alice")
	f.join(t, "bob")

	require.NoError(t, f.schedule.TakeSlot(f.apartment.ID, 2, alice.ID))

	snapshot := f.coord.Refresh(alice.ID, f.apartment.ID, 2,
		coordinator.ScopeApartment,
		coordinator.ScopeMembers,
		coordinator.ScopeSchedule,
		coordinator.ScopeTasks,
		coordinator.ScopeMode)

	require.Empty(t, snapshot.Stale)

	require.NotNil(t, snapshot.Apartment)
	require.Equal(t, 2, snapshot.Apartment.CurrentResidents)

	require.Len(t, snapshot.Members, 2)
	require.Equal(t, models.RoleManager, snapshot.Members[0].Role)

	require.Len(t, snapshot.Schedule, 7)
	require.True(t, snapshot.Schedule[2].ClaimedByCaller)
	require.Equal(t, "alice", snapshot.Schedule[2].ClaimantName)
	require.Nil(t, snapshot.Schedule[3].ClaimantID)

	require.Len(t, snapshot.Tasks, len(catalog.Default()))

	require.NotNil(t, snapshot.UseDefaultTasks)
	require.True(t, *snapshot.UseDefaultTasks)
}

func TestRefreshOmitsUnrequestedScopes(t *testing.T) {
	f := newFixture(t)
	alice := f.join(t, "alice")

	snapshot := f.coord.Refresh(alice.ID, f.apartment.ID, 0, coordinator.ScopeMembers)

	require.Len(t, snapshot.Members, 1)
	require.Nil(t, snapshot.Apartment)
	require.Nil(t, snapshot.Schedule)
	require.Nil(t, snapshot.Tasks)
	require.Nil(t, snapshot.UseDefaultTasks)
}

func TestRefreshMarksFailedScopeStale(t *testing.T) {
	f := newFixture(t)
	alice := f.join(t, "alice")

	// Templates require membership of the apartment being read; asking
	// about another apartment fails that scope without failing the rest.
	other := testutil.CreateApartment(t, f.db, 4)

	snapshot := f.coord.Refresh(alice.ID, other.ID, 0,
		coordinator.ScopeApartment,
		coordinator.ScopeTemplates)

	require.NotNil(t, snapshot.Apartment)
	require.Contains(t, snapshot.Stale, string(coordinator.ScopeTemplates))
	require.Nil(t, snapshot.Templates)
}

func TestApartmentViewMissingApartment(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.ApartmentView(9999)
	require.Error(t, err)
}
