package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplist-app/shoplist-backend/internal/admin/service"
	groupdomain "github.com/shoplist-app/shoplist-backend/internal/groups/domain"
	grouprepo "github.com/shoplist-app/shoplist-backend/internal/groups/repository"
	listdomain "github.com/shoplist-app/shoplist-backend/internal/lists/domain"
	listrepo "github.com/shoplist-app/shoplist-backend/internal/lists/repository"
	"github.com/shoplist-app/shoplist-backend/internal/store/memory"
	userdomain "github.com/shoplist-app/shoplist-backend/internal/users/domain"
	userrepo "github.com/shoplist-app/shoplist-backend/internal/users/repository"
)

const adminEmail = "admin@admin.com"

type fixture struct {
	st     *memory.Store
	users  *userrepo.UserRepository
	lists  *listrepo.ListRepository
	items  *listrepo.ItemRepository
	groups *grouprepo.GroupRepository
	svc    *service.AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := memory.New()
	f := &fixture{
		st:     st,
		users:  userrepo.NewUserRepository(st),
		lists:  listrepo.NewListRepository(st),
		items:  listrepo.NewItemRepository(st),
		groups: grouprepo.NewGroupRepository(st),
	}
	f.svc = service.NewAdminService(f.users, f.lists, f.groups, nil, adminEmail)

	ctx := context.Background()
	for _, u := range []userdomain.User{
		{UID: "uid-alice", Email: "alice@example.com", DisplayName: "Alice"},
		{UID: "uid-bob", Email: "bob@example.com", DisplayName: "Bob"},
		{UID: "uid-carol", Email: "carol@example.com", DisplayName: "Carol"},
		{UID: "uid-admin", Email: adminEmail, DisplayName: "Admin", Role: "admin"},
	} {
		require.NoError(t, f.users.Upsert(ctx, u))
	}
	return f
}

func (f *fixture) seedList(t *testing.T, creator string, members ...string) string {
	t.Helper()
	id, err := f.lists.Create(context.Background(), listdomain.List{
		ListName:  "Groceries",
		CreatorID: creator,
		Members:   members,
	})
	require.NoError(t, err)
	return id
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("sole participant lists are cascade deleted", func(t *testing.T) {
		f := newFixture(t)
		listID := f.seedList(t, "uid-alice", "uid-alice")

		report, err := f.svc.DeleteUser(ctx, adminEmail, "uid-alice")
		require.NoError(t, err)
		assert.Equal(t, []string{listID}, report.DeletedLists)
		assert.Empty(t, report.Failures)

		_, err = f.lists.Get(ctx, listID)
		assert.ErrorIs(t, err, listdomain.ErrListNotFound)

		user, err := f.users.GetByID(ctx, "uid-alice")
		require.NoError(t, err)
		assert.True(t, user.Deleted)
	})

	t.Run("created lists transfer to the lowest remaining member", func(t *testing.T) {
		f := newFixture(t)
		listID := f.seedList(t, "uid-carol", "uid-carol", "uid-bob", "uid-alice")

		report, err := f.svc.DeleteUser(ctx, adminEmail, "uid-carol")
		require.NoError(t, err)
		assert.Equal(t, []string{listID}, report.UpdatedLists)

		list, err := f.lists.Get(ctx, listID)
		require.NoError(t, err)
		assert.Equal(t, "uid-alice", list.CreatorID)
		assert.ElementsMatch(t, []string{"uid-alice", "uid-bob"}, list.Members)
	})

	t.Run("membership-only lists just drop the member", func(t *testing.T) {
		f := newFixture(t)
		listID := f.seedList(t, "uid-alice", "uid-alice", "uid-bob")

		report, err := f.svc.DeleteUser(ctx, adminEmail, "uid-bob")
		require.NoError(t, err)
		assert.Equal(t, []string{listID}, report.UpdatedLists)

		list, err := f.lists.Get(ctx, listID)
		require.NoError(t, err)
		assert.Equal(t, "uid-alice", list.CreatorID)
		assert.Equal(t, []string{"uid-alice"}, list.Members)
	})

	t.Run("a failing list does not stop the cascade", func(t *testing.T) {
		f := newFixture(t)
		broken := f.seedList(t, "uid-alice", "uid-alice", "uid-bob")
		healthy := f.seedList(t, "uid-alice", "uid-alice", "uid-bob")
		f.st.FailWrites("lists", broken, errors.New("write refused"))

		report, err := f.svc.DeleteUser(ctx, adminEmail, "uid-bob")
		require.NoError(t, err)

		require.Len(t, report.Failures, 1)
		assert.Equal(t, broken, report.Failures[0].ListID)
		assert.Equal(t, []string{healthy}, report.UpdatedLists)

		user, err := f.users.GetByID(ctx, "uid-bob")
		require.NoError(t, err)
		assert.True(t, user.Deleted)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.DeleteUser(ctx, adminEmail, "uid-nobody")
		assert.ErrorIs(t, err, userdomain.ErrUserNotFound)
	})

	t.Run("creator not listed in members still counts as sole participant", func(t *testing.T) {
		f := newFixture(t)
		listID := f.seedList(t, "uid-alice")

		report, err := f.svc.DeleteUser(ctx, adminEmail, "uid-alice")
		require.NoError(t, err)
		assert.Equal(t, []string{listID}, report.DeletedLists)
	})
}

func TestAdminDeleteList(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	listID := f.seedList(t, "uid-alice", "uid-alice")

	require.NoError(t, f.svc.DeleteList(ctx, adminEmail, listID))
	_, err := f.lists.Get(ctx, listID)
	assert.ErrorIs(t, err, listdomain.ErrListNotFound)

	err = f.svc.DeleteList(ctx, adminEmail, "missing")
	assert.ErrorIs(t, err, listdomain.ErrListNotFound)
}

func TestOverview(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	require.NoError(t, f.users.MarkDeleted(ctx, "uid-carol"))

	f.seedList(t, "uid-alice", "uid-alice")
	archivedID := f.seedList(t, "uid-bob", "uid-bob")
	require.NoError(t, f.lists.SetFields(ctx, archivedID, map[string]any{
		"status": listdomain.StatusArchived, "isArchived": true,
	}))
	// Only the deleted user is involved here; the overview must skip it.
	f.seedList(t, "uid-carol", "uid-carol")

	overview, err := f.svc.Overview(ctx)
	require.NoError(t, err)

	uids := make([]string, 0, len(overview.Users))
	for _, u := range overview.Users {
		uids = append(uids, u.UID)
	}
	assert.ElementsMatch(t, []string{"uid-alice", "uid-bob"}, uids)

	assert.Len(t, overview.Lists, 2)
	assert.Equal(t, 1, overview.ActiveLists)
	assert.Equal(t, 1, overview.ArchivedLists)
}

func groupFixture(owner string) groupdomain.Group {
	return groupdomain.Group{GroupName: "Household", OwnerID: owner, MemberUIDs: []string{owner}}
}

func TestReportDanglingGroupLinks(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	groupID, err := f.groups.Create(ctx, groupFixture("uid-alice"))
	require.NoError(t, err)

	linkedID, err := f.lists.Create(ctx, listdomain.List{
		ListName: "Linked", CreatorID: "uid-alice", Members: []string{"uid-alice"},
		LinkedGroupID: groupID,
	})
	require.NoError(t, err)
	_, err = f.lists.Create(ctx, listdomain.List{
		ListName: "Unlinked", CreatorID: "uid-alice", Members: []string{"uid-alice"},
	})
	require.NoError(t, err)

	dangling, err := f.svc.ReportDanglingGroupLinks(ctx)
	require.NoError(t, err)
	assert.Empty(t, dangling)

	require.NoError(t, f.groups.Delete(ctx, groupID))

	dangling, err = f.svc.ReportDanglingGroupLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{linkedID}, dangling)
}
