package services_test

import (
	"testing"

	"github.com/choreboard-dev/choreboard/internal/apperr"
	"github.com/choreboard-dev/choreboard/internal/catalog"
	"github.com/choreboard-dev/choreboard/internal/models"
	"github.com/choreboard-dev/choreboard/internal/testutil"
	"github.com/stretchr/testify/require"
)

func totalCleanings(t *testing.T, f scheduleFixture, userID uint) int {
	t.Helper()

	var user models.User
	require.NoError(t, f.db.First(&user, userID).Error)

	return user.TotalCleanings
}

func TestToggleRoundTripBanksCleaning(t *testing.T) {
	f := newScheduleFixture(t)
	user := f.join(t, "alice")

	require.NoError(t, f.schedule.TakeSlot(f.apartment.ID, 0, user.ID))

	instances, err := f.tasks.ListForDay(user.ID, 0)
	require.NoError(t, err)
	require.NotEmpty(t, instances)

	toggled, err := f.tasks.Toggle(user.ID, instances[0].ID)
	require.NoError(t, err)
	require.True(t, toggled.IsDone)
	require.Equal(t, 1, totalCleanings(t, f, user.ID))

	toggled, err = f.tasks.Toggle(user.ID, instances[0].ID)
	require.NoError(t, err)
	require.False(t, toggled.IsDone)
	require.Equal(t, 0, totalCleanings(t, f, user.ID), "undo must round-trip the counter")
}

func TestToggleForeignTaskForbidden(t *testing.T) {
	f := newScheduleFixture(t)
	alice := f.join(t, "alice")
	bob := f.join(t, "bob")

	require.NoError(t, f.schedule.TakeSlot(f.apartment.ID, 0, alice.ID))

	instances, err := f.tasks.ListForDay(alice.ID, 0)
	require.NoError(t, err)

	_, err = f.tasks.Toggle(bob.ID, instances[0].ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	require.Equal(t, 0, totalCleanings(t, f, alice.ID))
}

func TestToggleMissingTask(t *testing.T) {
	f := newScheduleFixture(t)
	user := f.join(t, "alice")

	_, err := f.tasks.Toggle(user.ID, 12345)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCustomTemplatesMaterializeInOrder(t *testing.T) {
	f := newScheduleFixture(t)
	manager := f.join(t, "manager")

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, false))

	_, err := f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Dishes", "wash and dry")
	require.NoError(t, err)
	_, err = f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Trash", "")
	require.NoError(t, err)

	require.NoError(t, f.schedule.TakeSlot(f.apartment.ID, 2, manager.ID))

	instances, err := f.tasks.ListForDay(manager.ID, 2)
	require.NoError(t, err)
	require.Len(t, instances, 2)
	require.Equal(t, "Dishes", instances[0].Name)
	require.Equal(t, "Trash", instances[1].Name)
}

func TestCreateTemplateRejectedInDefaultMode(t *testing.T) {
	f := newScheduleFixture(t)
	manager := f.join(t, "manager")

	_, err := f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Dishes", "")
	require.ErrorIs(t, err, apperr.ErrModeConflict)
}

func TestCreateTemplateRequiresManager(t *testing.T) {
	f := newScheduleFixture(t)
	manager := f.join(t, "manager")
	resident := f.join(t, "resident")

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, false))

	_, err := f.tasks.CreateTemplate(resident.ID, f.apartment.ID, "Dishes", "")
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestCreateTemplateEmptyNameRejected(t *testing.T) {
	f := newScheduleFixture(t)
	manager := f.join(t, "manager")

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, false))

	_, err := f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "   ", "")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateTemplateAppendsToClaimedDays(t *testing.T) {
	f := newScheduleFixture(t)
	manager := f.join(t, "manager")
	resident := f.join(t, "resident")

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, false))

	_, err := f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Dishes", "")
	require.NoError(t, err)

	require.NoError(t, f.schedule.TakeSlot(f.apartment.ID, 1, resident.ID))

	instances, err := f.tasks.ListForDay(resident.ID, 1)
	require.NoError(t, err)
	require.Len(t, instances, 1)

	_, err = f.tasks.Toggle(resident.ID, instances[0].ID)
	require.NoError(t, err)

	_, err = f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Trash", "")
	require.NoError(t, err)

	instances, err = f.tasks.ListForDay(resident.ID, 1)
	require.NoError(t, err)
	require.Len(t, instances, 2)
	require.Equal(t, "Trash", instances[1].Name)
	require.False(t, instances[1].IsDone)
}

func TestModeSwitchRegeneratesClaimedDays(t *testing.T) {
	f := newScheduleFixture(t)
	manager := f.join(t, "manager")

	require.NoError(t, f.schedule.TakeSlot(f.apartment.ID, 3, manager.ID))

	instances, err := f.tasks.ListForDay(manager.ID, 3)
	require.NoError(t, err)
	require.Len(t, instances, len(catalog.Default()))

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, false))

	instances, err = f.tasks.ListForDay(manager.ID, 3)
	require.NoError(t, err)
	require.Empty(t, instances, "no templates means an empty checklist")
}

func TestModeTogglePreservesTemplates(t *testing.T) {
	f := newScheduleFixture(t)
	manager := f.join(t, "manager")

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, false))

	_, err := f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Dishes", "")
	require.NoError(t, err)

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, true))

	templates, err := f.tasks.ListTemplates(manager.ID, f.apartment.ID)
	require.NoError(t, err)
	require.Len(t, templates, 1, "switching back to defaults must not drop templates")

	require.NoError(t, f.schedule.TakeSlot(f.apartment.ID, 0, manager.ID))

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, false))

	instances, err := f.tasks.ListForDay(manager.ID, 0)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	require.Equal(t, "Dishes", instances[0].Name)
}

func TestSetGenerationModeRequiresManager(t *testing.T) {
	f := newScheduleFixture(t)
	f.join(t, "manager")
	resident := f.join(t, "resident")

	err := f.tasks.SetGenerationMode(resident.ID, f.apartment.ID, false)
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestListTemplatesRequiresMembership(t *testing.T) {
	f := newScheduleFixture(t)
	f.join(t, "manager")

	outsider := testutil.CreateUser(t, f.db, "outsider")

	_, err := f.tasks.ListTemplates(outsider.ID, f.apartment.ID)
	require.ErrorIs(t, err, apperr.ErrNotAMember)
}

func TestDeleteTemplateKeepsDoneInstances(t *testing.T) {
	f := newScheduleFixture(t)
	manager := f.join(t, "manager")

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, false))

	dishes, err := f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Dishes", "")
	require.NoError(t, err)
	_, err = f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Trash", "")
	require.NoError(t, err)

	require.NoError(t, f.schedule.TakeSlot(f.apartment.ID, 5, manager.ID))

	instances, err := f.tasks.ListForDay(manager.ID, 5)
	require.NoError(t, err)
	require.Len(t, instances, 2)

	_, err = f.tasks.Toggle(manager.ID, instances[0].ID)
	require.NoError(t, err)

	require.NoError(t, f.tasks.DeleteTemplate(manager.ID, dishes.ID))

	instances, err = f.tasks.ListForDay(manager.ID, 5)
	require.NoError(t, err)
	require.Len(t, instances, 2, "completed occurrence survives template deletion")
	require.True(t, instances[0].IsDone)

	templates, err := f.tasks.ListTemplates(manager.ID, f.apartment.ID)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	require.Equal(t, "Trash", templates[0].Name)
}

func TestDeleteTemplateRemovesPendingInstances(t *testing.T) {
	f := newScheduleFixture(t)
	manager := f.join(t, "manager")

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, false))

	dishes, err := f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Dishes", "")
	require.NoError(t, err)

	require.NoError(t, f.schedule.TakeSlot(f.apartment.ID, 6, manager.ID))

	require.NoError(t, f.tasks.DeleteTemplate(manager.ID, dishes.ID))

	instances, err := f.tasks.ListForDay(manager.ID, 6)
	require.NoError(t, err)
	require.Empty(t, instances)
}

func TestDeleteInertTemplateKeepsCatalogInstances(t *testing.T) {
	f := newScheduleFixture(t)
	manager := f.join(t, "manager")

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, false))

	// Template named like a catalog entry, left inert by switching back to
	// defaults.
	trash, err := f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Take out the trash", "")
	require.NoError(t, err)

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, true))
	require.NoError(t, f.schedule.TakeSlot(f.apartment.ID, 0, manager.ID))

	require.NoError(t, f.tasks.DeleteTemplate(manager.ID, trash.ID))

	instances, err := f.tasks.ListForDay(manager.ID, 0)
	require.NoError(t, err)
	require.Len(t, instances, len(catalog.Default()), "catalog-derived instances survive by name collision")
}

func TestTemplateAppendAfterDeleteKeepsOrder(t *testing.T) {
	f := newScheduleFixture(t)
	manager := f.join(t, "manager")

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, false))

	_, err := f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Wipe counters", "")
	require.NoError(t, err)
	plants, err := f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Water plants", "")
	require.NoError(t, err)
	_, err = f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Vacuum", "")
	require.NoError(t, err)

	require.NoError(t, f.schedule.TakeSlot(f.apartment.ID, 0, manager.ID))

	// Deleting the middle template leaves a position gap; the next append
	// must still land strictly after the survivors.
	require.NoError(t, f.tasks.DeleteTemplate(manager.ID, plants.ID))

	_, err = f.tasks.CreateTemplate(manager.ID, f.apartment.ID, "Fold laundry", "")
	require.NoError(t, err)

	instances, err := f.tasks.ListForDay(manager.ID, 0)
	require.NoError(t, err)
	require.Len(t, instances, 3)
	require.Equal(t, "Wipe counters", instances[0].Name)
	require.Equal(t, "Vacuum", instances[1].Name)
	require.Equal(t, "Fold laundry", instances[2].Name)

	for i := 1; i < len(instances); i++ {
		require.Greater(t, instances[i].Position, instances[i-1].Position, "positions never collide")
	}
}

func TestDeleteTemplateMissing(t *testing.T) {
	f := newScheduleFixture(t)
	manager := f.join(t, "manager")

	err := f.tasks.DeleteTemplate(manager.ID, 999)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGenerationModeReadsApartmentFlag(t *testing.T) {
	f := newScheduleFixture(t)
	manager := f.join(t, "manager")

	useDefault, err := f.tasks.GenerationMode(f.apartment.ID)
	require.NoError(t, err)
	require.True(t, useDefault)

	require.NoError(t, f.tasks.SetGenerationMode(manager.ID, f.apartment.ID, false))

	useDefault, err = f.tasks.GenerationMode(f.apartment.ID)
	require.NoError(t, err)
	require.False(t, useDefault)
}
