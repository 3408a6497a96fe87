package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	groupdomain "github.com/shoplist-app/shoplist-backend/internal/groups/domain"
	grouprepo "github.com/shoplist-app/shoplist-backend/internal/groups/repository"
	"github.com/shoplist-app/shoplist-backend/internal/lists/domain"
	"github.com/shoplist-app/shoplist-backend/internal/lists/repository"
	"github.com/shoplist-app/shoplist-backend/internal/lists/service"
	"github.com/shoplist-app/shoplist-backend/internal/store/memory"
	userdomain "github.com/shoplist-app/shoplist-backend/internal/users/domain"
	userrepo "github.com/shoplist-app/shoplist-backend/internal/users/repository"
)

const adminEmail = "admin@admin.com"

type fixture struct {
	st     *memory.Store
	lists  *repository.ListRepository
	items  *repository.ItemRepository
	groups *grouprepo.GroupRepository
	users  *userrepo.UserRepository
	svc    *service.ListService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := memory.New()
	f := &fixture{
		st:     st,
		lists:  repository.NewListRepository(st),
		items:  repository.NewItemRepository(st),
		groups: grouprepo.NewGroupRepository(st),
		users:  userrepo.NewUserRepository(st),
	}
	f.svc = service.NewListService(f.lists, f.items, f.groups, f.users, nil, adminEmail)

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

func (f *fixture) createList(t *testing.T, creator string, req service.CreateListRequest) domain.List {
	t.Helper()
	list, err := f.svc.CreateList(context.Background(), creator, req)
	require.NoError(t, err)
	return list
}

func (f *fixture) createGroup(t *testing.T, owner, name string, members ...string) groupdomain.Group {
	t.Helper()
	group := groupdomain.Group{
		GroupName:  name,
		OwnerID:    owner,
		MemberUIDs: append([]string{owner}, members...),
	}
	id, err := f.groups.Create(context.Background(), group)
	require.NoError(t, err)
	group.ID = id
	return group
}

func TestCreateList(t *testing.T) {
	ctx := context.Background()

	t.Run("creator is always a member", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{
			ListName: "Groceries",
			Members:  []string{"uid-bob"},
		})

		assert.Equal(t, "uid-alice", list.CreatorID)
		assert.Contains(t, list.Members, "uid-alice")
		assert.Contains(t, list.Members, "uid-bob")

		stored, err := f.lists.Get(ctx, list.ID)
		require.NoError(t, err)
		assert.Contains(t, stored.Members, "uid-alice")
		assert.Equal(t, domain.StatusActive, stored.Status)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateList(ctx, "uid-alice", service.CreateListRequest{ListName: "   "})
		assert.ErrorIs(t, err, domain.ErrNameRequired)
	})

	t.Run("duplicate requested members are collapsed", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{
			ListName: "Groceries",
			Members:  []string{"uid-alice", "uid-bob", "uid-bob"},
		})
		assert.ElementsMatch(t, []string{"uid-alice", "uid-bob"}, list.Members)
	})

	t.Run("group link snapshots the group members", func(t *testing.T) {
		f := newFixture(t)
		group := f.createGroup(t, "uid-bob", "Household", "uid-carol")

		list := f.createList(t, "uid-alice", service.CreateListRequest{
			ListName:      "Groceries",
			LinkedGroupID: group.ID,
		})
		assert.ElementsMatch(t, []string{"uid-alice", "uid-bob", "uid-carol"}, list.Members)
		assert.Equal(t, group.ID, list.LinkedGroupID)
	})

	t.Run("unknown linked group is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateList(ctx, "uid-alice", service.CreateListRequest{
			ListName:      "Groceries",
			LinkedGroupID: "missing",
		})
		assert.ErrorIs(t, err, groupdomain.ErrGroupNotFound)
	})
}

func TestMembershipChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("non-member cannot read the list", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})

		_, err := f.svc.Get(ctx, "uid-bob", list.ID)
		assert.ErrorIs(t, err, domain.ErrNotMember)
	})

	t.Run("unknown list", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Get(ctx, "uid-alice", "missing")
		assert.ErrorIs(t, err, domain.ErrListNotFound)
	})
}

func TestAddMember(t *testing.T) {
	ctx := context.Background()

	t.Run("adding twice keeps one entry", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})

		require.NoError(t, f.svc.AddMember(ctx, "uid-alice", list.ID, "uid-bob"))
		require.NoError(t, f.svc.AddMember(ctx, "uid-alice", list.ID, "uid-bob"))

		stored, err := f.lists.Get(ctx, list.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"uid-alice", "uid-bob"}, stored.Members)
	})

	t.Run("any member may share", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{
			ListName: "Groceries", Members: []string{"uid-bob"},
		})

		require.NoError(t, f.svc.AddMember(ctx, "uid-bob", list.ID, "uid-carol"))
		stored, err := f.lists.Get(ctx, list.ID)
		require.NoError(t, err)
		assert.Contains(t, stored.Members, "uid-carol")
	})
}

func TestAddMemberByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves and adds", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})

		user, err := f.svc.AddMemberByEmail(ctx, "uid-alice", list.ID, "Bob@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "uid-bob", user.UID)

		stored, err := f.lists.Get(ctx, list.ID)
		require.NoError(t, err)
		assert.Contains(t, stored.Members, "uid-bob")
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})

		_, err := f.svc.AddMemberByEmail(ctx, "uid-alice", list.ID, "nobody@example.com")
		assert.ErrorIs(t, err, userdomain.ErrUserNotFound)
	})

	t.Run("soft-deleted account does not resolve", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.users.MarkDeleted(ctx, "uid-bob"))
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})

		_, err := f.svc.AddMemberByEmail(ctx, "uid-alice", list.ID, "bob@example.com")
		assert.ErrorIs(t, err, userdomain.ErrUserNotFound)
	})

	t.Run("admin account cannot be shared with", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})

		_, err := f.svc.AddMemberByEmail(ctx, "uid-alice", list.ID, adminEmail)
		assert.ErrorIs(t, err, domain.ErrAdminShare)
	})

	t.Run("existing member is a conflict", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{
			ListName: "Groceries", Members: []string{"uid-bob"},
		})

		_, err := f.svc.AddMemberByEmail(ctx, "uid-alice", list.ID, "bob@example.com")
		assert.ErrorIs(t, err, domain.ErrAlreadyMember)
	})
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()

	t.Run("removes a plain member", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{
			ListName: "Groceries", Members: []string{"uid-bob"},
		})

		require.NoError(t, f.svc.RemoveMember(ctx, "uid-alice", list.ID, "uid-bob"))
		stored, err := f.lists.Get(ctx, list.ID)
		require.NoError(t, err)
		assert.NotContains(t, stored.Members, "uid-bob")
	})

	t.Run("creator can never be removed", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{
			ListName: "Groceries", Members: []string{"uid-bob"},
		})

		err := f.svc.RemoveMember(ctx, "uid-bob", list.ID, "uid-alice")
		assert.ErrorIs(t, err, domain.ErrCreatorRemoval)

		stored, err := f.lists.Get(ctx, list.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"uid-alice", "uid-bob"}, stored.Members)
	})

	t.Run("member of the linked group is protected", func(t *testing.T) {
		f := newFixture(t)
		group := f.createGroup(t, "uid-alice", "Household", "uid-bob")
		list := f.createList(t, "uid-alice", service.CreateListRequest{
			ListName:      "Groceries",
			LinkedGroupID: group.ID,
		})

		err := f.svc.RemoveMember(ctx, "uid-alice", list.ID, "uid-bob")
		assert.ErrorIs(t, err, domain.ErrGroupMemberRemoval)
	})

	t.Run("unlinking releases the protection", func(t *testing.T) {
		f := newFixture(t)
		group := f.createGroup(t, "uid-alice", "Household", "uid-bob")
		list := f.createList(t, "uid-alice", service.CreateListRequest{
			ListName:      "Groceries",
			LinkedGroupID: group.ID,
		})

		require.NoError(t, f.svc.UnlinkListFromGroup(ctx, "uid-alice", list.ID))
		require.NoError(t, f.svc.RemoveMember(ctx, "uid-alice", list.ID, "uid-bob"))
	})

	t.Run("dangling group link skips the group check", func(t *testing.T) {
		f := newFixture(t)
		group := f.createGroup(t, "uid-alice", "Household", "uid-bob")
		list := f.createList(t, "uid-alice", service.CreateListRequest{
			ListName:      "Groceries",
			LinkedGroupID: group.ID,
		})
		require.NoError(t, f.groups.Delete(ctx, group.ID))

		require.NoError(t, f.svc.RemoveMember(ctx, "uid-alice", list.ID, "uid-bob"))
	})
}

func TestGroupLinking(t *testing.T) {
	ctx := context.Background()

	t.Run("link unions the snapshot", func(t *testing.T) {
		f := newFixture(t)
		group := f.createGroup(t, "uid-bob", "Household", "uid-carol")
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})

		require.NoError(t, f.svc.LinkListToGroup(ctx, "uid-alice", list.ID, group.ID))

		stored, err := f.lists.Get(ctx, list.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"uid-alice", "uid-bob", "uid-carol"}, stored.Members)
		assert.Equal(t, group.ID, stored.LinkedGroupID)
	})

	t.Run("group growth does not propagate until relinked", func(t *testing.T) {
		f := newFixture(t)
		group := f.createGroup(t, "uid-bob", "Household")
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})
		require.NoError(t, f.svc.LinkListToGroup(ctx, "uid-alice", list.ID, group.ID))

		require.NoError(t, f.groups.SetMembers(ctx, group.ID, []string{"uid-bob", "uid-carol"}))

		stored, err := f.lists.Get(ctx, list.ID)
		require.NoError(t, err)
		assert.NotContains(t, stored.Members, "uid-carol")

		require.NoError(t, f.svc.LinkListToGroup(ctx, "uid-alice", list.ID, group.ID))
		stored, err = f.lists.Get(ctx, list.ID)
		require.NoError(t, err)
		assert.Contains(t, stored.Members, "uid-carol")
	})

	t.Run("unlink keeps every member", func(t *testing.T) {
		f := newFixture(t)
		group := f.createGroup(t, "uid-bob", "Household", "uid-carol")
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})
		require.NoError(t, f.svc.LinkListToGroup(ctx, "uid-alice", list.ID, group.ID))

		require.NoError(t, f.svc.UnlinkListFromGroup(ctx, "uid-alice", list.ID))

		stored, err := f.lists.Get(ctx, list.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.LinkedGroupID)
		assert.ElementsMatch(t, []string{"uid-alice", "uid-bob", "uid-carol"}, stored.Members)
	})
}

func TestArchive(t *testing.T) {
	ctx := context.Background()

	t.Run("archive and reactivate are idempotent", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})

		require.NoError(t, f.svc.Archive(ctx, "uid-alice", list.ID))
		require.NoError(t, f.svc.Archive(ctx, "uid-alice", list.ID))

		stored, err := f.lists.Get(ctx, list.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusArchived, stored.Status)
		assert.True(t, stored.IsArchived)

		require.NoError(t, f.svc.Reactivate(ctx, "uid-alice", list.ID))
		stored, err = f.lists.Get(ctx, list.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, stored.Status)
		assert.False(t, stored.IsArchived)
	})
}

func TestDeleteList(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the list and its items atomically", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})
		item, err := f.svc.AddItem(ctx, "uid-alice", list.ID, service.AddItemRequest{ItemName: "Milk"})
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteList(ctx, "uid-alice", list.ID))

		_, err = f.lists.Get(ctx, list.ID)
		assert.ErrorIs(t, err, domain.ErrListNotFound)
		_, err = f.items.Get(ctx, item.ID)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("a failed batch leaves everything in place", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})
		item, err := f.svc.AddItem(ctx, "uid-alice", list.ID, service.AddItemRequest{ItemName: "Milk"})
		require.NoError(t, err)

		f.st.FailBatch(errors.New("backend unavailable"))
		err = f.svc.DeleteList(ctx, "uid-alice", list.ID)
		require.Error(t, err)

		f.st.FailBatch(nil)
		_, err = f.lists.Get(ctx, list.ID)
		assert.NoError(t, err)
		_, err = f.items.Get(ctx, item.ID)
		assert.NoError(t, err)
	})
}

func TestItems(t *testing.T) {
	ctx := context.Background()

	t.Run("add, toggle and delete", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{
			ListName: "Groceries", Members: []string{"uid-bob"},
		})

		item, err := f.svc.AddItem(ctx, "uid-alice", list.ID, service.AddItemRequest{
			ItemName: "Milk", Quantity: "2", Unit: "l",
		})
		require.NoError(t, err)
		assert.Equal(t, "uid-alice", item.AddedBy)

		toggled, err := f.svc.TogglePurchased(ctx, "uid-bob", item.ID)
		require.NoError(t, err)
		assert.True(t, toggled.IsPurchased)

		toggled, err = f.svc.TogglePurchased(ctx, "uid-bob", item.ID)
		require.NoError(t, err)
		assert.False(t, toggled.IsPurchased)

		require.NoError(t, f.svc.DeleteItem(ctx, "uid-alice", item.ID))
		items, err := f.svc.ListItems(ctx, "uid-alice", list.ID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("empty item name is rejected", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})

		_, err := f.svc.AddItem(ctx, "uid-alice", list.ID, service.AddItemRequest{ItemName: " "})
		assert.ErrorIs(t, err, domain.ErrItemNameRequired)
	})

	t.Run("non-member cannot touch items", func(t *testing.T) {
		f := newFixture(t)
		list := f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})
		item, err := f.svc.AddItem(ctx, "uid-alice", list.ID, service.AddItemRequest{ItemName: "Milk"})
		require.NoError(t, err)

		_, err = f.svc.TogglePurchased(ctx, "uid-bob", item.ID)
		assert.ErrorIs(t, err, domain.ErrNotMember)
	})
}

func TestSubscriptions(t *testing.T) {
	ctx := context.Background()

	t.Run("user list subscription sees new lists", func(t *testing.T) {
		f := newFixture(t)

		var snapshots [][]domain.List
		cancel, err := f.svc.SubscribeUserLists(ctx, "uid-alice", func(lists []domain.List) {
			snapshots = append(snapshots, lists)
		})
		require.NoError(t, err)
		defer cancel()

		require.Len(t, snapshots, 1)
		assert.Empty(t, snapshots[0])

		f.createList(t, "uid-alice", service.CreateListRequest{ListName: "Groceries"})
		require.Greater(t, len(snapshots), 1)
		assert.Len(t, snapshots[len(snapshots)-1], 1)
	})
}
