package service

import (
	"context"
	"strings"

	"github.com/shoplist-app/shoplist-backend/internal/groups/domain"
	"github.com/shoplist-app/shoplist-backend/internal/groups/repository"
	userdomain "github.com/shoplist-app/shoplist-backend/internal/users/domain"
	userrepo "github.com/shoplist-app/shoplist-backend/internal/users/repository"
)

// GroupService owns the group membership rules: the owner is always a
// member, can never be removed, and only the owner may modify the group.
// Every check runs before the write; a rejected operation never mutates
// state.
type GroupService struct {
	groups *repository.GroupRepository
	users  *userrepo.UserRepository
}

func NewGroupService(groups *repository.GroupRepository, users *userrepo.UserRepository) *GroupService {
	return &GroupService{groups: groups, users: users}
}

func (s *GroupService) CreateGroup(ctx context.Context, actorID, name string) (domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Group{}, domain.ErrNameRequired
	}

	group := domain.Group{
		GroupName:  name,
		OwnerID:    actorID,
		MemberUIDs: []string{actorID},
	}
	id, err := s.groups.Create(ctx, group)
	if err != nil {
		return domain.Group{}, err
	}
	group.ID = id
	return group, nil
}

func (s *GroupService) Get(ctx context.Context, actorID, groupID string) (domain.Group, error) {
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if !group.HasMember(actorID) && group.OwnerID != actorID {
		return domain.Group{}, domain.ErrNotOwner
	}
	return group, nil
}

func (s *GroupService) ListForOwner(ctx context.Context, actorID string) ([]domain.Group, error) {
	return s.groups.ListByOwner(ctx, actorID)
}

// SetMembers replaces the member set. The owner is unioned back in and the
// set deduplicated regardless of what the caller passed, so no write can
// ever drop the owner.
func (s *GroupService) SetMembers(ctx context.Context, actorID, groupID string, memberUIDs []string) (domain.Group, error) {
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if group.OwnerID != actorID {
		return domain.Group{}, domain.ErrNotOwner
	}

	members := dedupe(append([]string{group.OwnerID}, memberUIDs...))
	if err := s.groups.SetMembers(ctx, groupID, members); err != nil {
		return domain.Group{}, err
	}
	group.MemberUIDs = members
	return group, nil
}

// AddMemberByEmail resolves the email against the users collection
// (lowercased) and adds the user. Deleted accounts do not resolve.
func (s *GroupService) AddMemberByEmail(ctx context.Context, actorID, groupID, email string) (domain.Group, error) {
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if group.OwnerID != actorID {
		return domain.Group{}, domain.ErrNotOwner
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.Group{}, err
	}
	if user.Deleted {
		return domain.Group{}, userdomain.ErrUserNotFound
	}
	if group.HasMember(user.UID) {
		return domain.Group{}, domain.ErrAlreadyMember
	}

	members := append(group.MemberUIDs, user.UID)
	if err := s.groups.SetMembers(ctx, groupID, members); err != nil {
		return domain.Group{}, err
	}
	group.MemberUIDs = members
	return group, nil
}

// RemoveMember drops one member. Removing the owner is forbidden; the only
// way to dissolve their membership is deleting the whole group.
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, uid string) (domain.Group, error) {
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if group.OwnerID != actorID {
		return domain.Group{}, domain.ErrNotOwner
	}
	if uid == group.OwnerID {
		return domain.Group{}, domain.ErrOwnerRemoval
	}

	members := make([]string, 0, len(group.MemberUIDs))
	for _, m := range group.MemberUIDs {
		if m != uid {
			members = append(members, m)
		}
	}
	if err := s.groups.SetMembers(ctx, groupID, members); err != nil {
		return domain.Group{}, err
	}
	group.MemberUIDs = members
	return group, nil
}

func (s *GroupService) Rename(ctx context.Context, actorID, groupID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrNameRequired
	}

	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != actorID {
		return domain.ErrNotOwner
	}
	return s.groups.Rename(ctx, groupID, name)
}

// DeleteGroup removes the group only. Lists linked to it keep their
// reference; the group just stops being a selectable share target.
func (s *GroupService) DeleteGroup(ctx context.Context, actorID, groupID string) error {
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != actorID {
		return domain.ErrNotOwner
	}
	return s.groups.Delete(ctx, groupID)
}

func (s *GroupService) SubscribeOwnerGroups(ctx context.Context, actorID string, fn func([]domain.Group)) (func(), error) {
	return s.groups.SubscribeByOwner(ctx, actorID, fn)
}

func dedupe(uids []string) []string {
	seen := make(map[string]bool, len(uids))
	out := make([]string, 0, len(uids))
	for _, uid := range uids {
		if uid != "" && !seen[uid] {
			seen[uid] = true
			out = append(out, uid)
		}
	}
	return out
}
