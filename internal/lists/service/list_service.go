// Package service implements the list membership policy. Invariants:
// the creator is always a member and can never be removed by a member
// operation, and a group-linked list always contains the group members it
// was linked with. All checks run before any write.
package service

import (
	"context"
	"log/slog"
	"strings"

	groupdomain "github.com/shoplist-app/shoplist-backend/internal/groups/domain"
	grouprepo "github.com/shoplist-app/shoplist-backend/internal/groups/repository"
	"github.com/shoplist-app/shoplist-backend/internal/lists/domain"
	"github.com/shoplist-app/shoplist-backend/internal/lists/repository"
	"github.com/shoplist-app/shoplist-backend/internal/observability/metrics"
	"github.com/shoplist-app/shoplist-backend/internal/realtime"
	userdomain "github.com/shoplist-app/shoplist-backend/internal/users/domain"
	userrepo "github.com/shoplist-app/shoplist-backend/internal/users/repository"
)

// EventSink receives change events for the realtime relay. Publishing is
// best-effort: a relay failure never fails the mutation that triggered it.
type EventSink interface {
	Publish(ctx context.Context, ev realtime.Event) error
}

type ListService struct {
	lists      *repository.ListRepository
	items      *repository.ItemRepository
	groups     *grouprepo.GroupRepository
	users      *userrepo.UserRepository
	events     EventSink
	adminEmail string
}

func NewListService(
	lists *repository.ListRepository,
	items *repository.ItemRepository,
	groups *grouprepo.GroupRepository,
	users *userrepo.UserRepository,
	events EventSink,
	adminEmail string,
) *ListService {
	return &ListService{
		lists:      lists,
		items:      items,
		groups:     groups,
		users:      users,
		events:     events,
		adminEmail: strings.ToLower(adminEmail),
	}
}

type CreateListRequest struct {
	ListName      string   `json:"listName"`
	Icon          string   `json:"icon"`
	Color         string   `json:"color"`
	Location      string   `json:"location"`
	Members       []string `json:"members"`
	LinkedGroupID string   `json:"linkedGroupId"`
}

type UpdateListRequest struct {
	ListName *string `json:"listName,omitempty"`
	Icon     *string `json:"icon,omitempty"`
	Color    *string `json:"color,omitempty"`
	Location *string `json:"location,omitempty"`
}

// CreateList builds the initial member set from the request, always
// including the creator. When a group link is requested the group's current
// members are snapshot-unioned in.
func (s *ListService) CreateList(ctx context.Context, actorID string, req CreateListRequest) (domain.List, error) {
	name := strings.TrimSpace(req.ListName)
	if name == "" {
		return domain.List{}, domain.ErrNameRequired
	}

	members := append([]string{actorID}, req.Members...)
	if req.LinkedGroupID != "" {
		group, err := s.groups.Get(ctx, req.LinkedGroupID)
		if err != nil {
			return domain.List{}, err
		}
		members = append(members, group.MemberUIDs...)
	}

	list := domain.List{
		ListName:      name,
		Icon:          req.Icon,
		Color:         req.Color,
		Location:      req.Location,
		CreatorID:     actorID,
		Members:       dedupe(members),
		LinkedGroupID: req.LinkedGroupID,
		Status:        domain.StatusActive,
	}
	id, err := s.lists.Create(ctx, list)
	if err != nil {
		return domain.List{}, err
	}
	list.ID = id

	metrics.CountListOp("create")
	s.publish(ctx, id, "lists", id, realtime.KindCreated)
	return list, nil
}

func (s *ListService) Get(ctx context.Context, actorID, listID string) (domain.List, error) {
	return s.memberList(ctx, actorID, listID)
}

func (s *ListService) ListForUser(ctx context.Context, actorID string) ([]domain.List, error) {
	return s.lists.ListByMember(ctx, actorID)
}

// Update applies a partial rename/recolor/relocate. A provided name must be
// non-empty after trimming.
func (s *ListService) Update(ctx context.Context, actorID, listID string, req UpdateListRequest) error {
	if _, err := s.memberList(ctx, actorID, listID); err != nil {
		return err
	}

	fields := make(map[string]any)
	if req.ListName != nil {
		name := strings.TrimSpace(*req.ListName)
		if name == "" {
			return domain.ErrNameRequired
		}
		fields["listName"] = name
	}
	if req.Icon != nil {
		fields["icon"] = *req.Icon
	}
	if req.Color != nil {
		fields["color"] = *req.Color
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if len(fields) == 0 {
		return nil
	}

	if err := s.lists.SetFields(ctx, listID, fields); err != nil {
		return err
	}
	s.publish(ctx, listID, "lists", listID, realtime.KindUpdated)
	return nil
}

// Archive is idempotent: archiving an archived list is a no-op success.
func (s *ListService) Archive(ctx context.Context, actorID, listID string) error {
	return s.setStatus(ctx, actorID, listID, domain.StatusArchived, true)
}

func (s *ListService) Reactivate(ctx context.Context, actorID, listID string) error {
	return s.setStatus(ctx, actorID, listID, domain.StatusActive, false)
}

func (s *ListService) setStatus(ctx context.Context, actorID, listID, status string, archived bool) error {
	if _, err := s.memberList(ctx, actorID, listID); err != nil {
		return err
	}
	if err := s.lists.SetFields(ctx, listID, map[string]any{
		"status":     status,
		"isArchived": archived,
	}); err != nil {
		return err
	}
	s.publish(ctx, listID, "lists", listID, realtime.KindUpdated)
	return nil
}

// DeleteList removes the list and all of its items atomically.
func (s *ListService) DeleteList(ctx context.Context, actorID, listID string) error {
	if _, err := s.memberList(ctx, actorID, listID); err != nil {
		return err
	}
	if err := s.lists.DeleteWithItems(ctx, listID); err != nil {
		return err
	}
	metrics.CountListOp("cascade_delete")
	s.publish(ctx, listID, "lists", listID, realtime.KindDeleted)
	return nil
}

// AddMember is the idempotent share primitive: adding an existing member is
// a no-op success.
func (s *ListService) AddMember(ctx context.Context, actorID, listID, uid string) error {
	if _, err := s.memberList(ctx, actorID, listID); err != nil {
		return err
	}
	if err := s.lists.AddMember(ctx, listID, uid); err != nil {
		return err
	}
	metrics.CountListOp("add_member")
	s.publish(ctx, listID, "lists", listID, realtime.KindUpdated)
	return nil
}

// AddMemberByEmail resolves a share target by email. Unknown and deleted
// accounts don't resolve; sharing with yourself, an existing member, or the
// admin account is a conflict.
func (s *ListService) AddMemberByEmail(ctx context.Context, actorID, listID, email string) (userdomain.User, error) {
	list, err := s.memberList(ctx, actorID, listID)
	if err != nil {
		return userdomain.User{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return userdomain.User{}, err
	}
	if user.Deleted {
		return userdomain.User{}, userdomain.ErrUserNotFound
	}
	if user.Email == s.adminEmail {
		return userdomain.User{}, domain.ErrAdminShare
	}
	if list.HasMember(user.UID) {
		return userdomain.User{}, domain.ErrAlreadyMember
	}

	if err := s.lists.AddMember(ctx, listID, user.UID); err != nil {
		return userdomain.User{}, err
	}
	metrics.CountListOp("add_member")
	s.publish(ctx, listID, "lists", listID, realtime.KindUpdated)
	return user, nil
}

// RemoveMember refuses to remove the creator, and refuses to remove a
// member who is in the linked group (they must be removed from the group,
// or the list unlinked, first). A dangling group link skips the group
// check, matching the share dialog's behavior when the group is gone.
func (s *ListService) RemoveMember(ctx context.Context, actorID, listID, uid string) error {
	list, err := s.memberList(ctx, actorID, listID)
	if err != nil {
		return err
	}
	if uid == list.CreatorID {
		return domain.ErrCreatorRemoval
	}
	if list.LinkedGroupID != "" {
		group, err := s.groups.Get(ctx, list.LinkedGroupID)
		switch {
		case err == nil:
			if group.HasMember(uid) {
				return domain.ErrGroupMemberRemoval
			}
		case err == groupdomain.ErrGroupNotFound:
			slog.Warn("list links to a deleted group", "listID", listID, "groupID", list.LinkedGroupID)
		default:
			return err
		}
	}

	if err := s.lists.RemoveMember(ctx, listID, uid); err != nil {
		return err
	}
	metrics.CountListOp("remove_member")
	s.publish(ctx, listID, "lists", listID, realtime.KindUpdated)
	return nil
}

// LinkListToGroup snapshot-unions the group's current members into the list
// and records the link. Members the group gains later are only picked up by
// linking again; membership between group and list is eventually, not
// continuously, consistent.
func (s *ListService) LinkListToGroup(ctx context.Context, actorID, listID, groupID string) error {
	if _, err := s.memberList(ctx, actorID, listID); err != nil {
		return err
	}
	group, err := s.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.lists.LinkGroup(ctx, listID, groupID, group.MemberUIDs); err != nil {
		return err
	}
	metrics.CountListOp("link_group")
	s.publish(ctx, listID, "lists", listID, realtime.KindUpdated)
	return nil
}

// UnlinkListFromGroup clears the link. Members gained via the group stay
// full list members.
func (s *ListService) UnlinkListFromGroup(ctx context.Context, actorID, listID string) error {
	if _, err := s.memberList(ctx, actorID, listID); err != nil {
		return err
	}
	if err := s.lists.Unlink(ctx, listID); err != nil {
		return err
	}
	metrics.CountListOp("unlink_group")
	s.publish(ctx, listID, "lists", listID, realtime.KindUpdated)
	return nil
}

type AddItemRequest struct {
	ItemName string `json:"itemName"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

func (s *ListService) AddItem(ctx context.Context, actorID, listID string, req AddItemRequest) (domain.Item, error) {
	if _, err := s.memberList(ctx, actorID, listID); err != nil {
		return domain.Item{}, err
	}
	name := strings.TrimSpace(req.ItemName)
	if name == "" {
		return domain.Item{}, domain.ErrItemNameRequired
	}

	item := domain.Item{
		ListID:   listID,
		ItemName: name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		AddedBy:  actorID,
	}
	id, err := s.items.Create(ctx, item)
	if err != nil {
		return domain.Item{}, err
	}
	item.ID = id

	s.publish(ctx, listID, "items", id, realtime.KindCreated)
	return item, nil
}

func (s *ListService) ListItems(ctx context.Context, actorID, listID string) ([]domain.Item, error) {
	if _, err := s.memberList(ctx, actorID, listID); err != nil {
		return nil, err
	}
	return s.items.ListByList(ctx, listID)
}

// TogglePurchased flips the purchased flag. Two concurrent toggles are
// last-writer-wins; that matches the checkbox semantics.
func (s *ListService) TogglePurchased(ctx context.Context, actorID, itemID string) (domain.Item, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return domain.Item{}, err
	}
	if _, err := s.memberList(ctx, actorID, item.ListID); err != nil {
		return domain.Item{}, err
	}

	item.IsPurchased = !item.IsPurchased
	if err := s.items.SetPurchased(ctx, itemID, item.IsPurchased); err != nil {
		return domain.Item{}, err
	}
	s.publish(ctx, item.ListID, "items", itemID, realtime.KindUpdated)
	return item, nil
}

func (s *ListService) DeleteItem(ctx context.Context, actorID, itemID string) error {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if _, err := s.memberList(ctx, actorID, item.ListID); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, itemID); err != nil {
		return err
	}
	s.publish(ctx, item.ListID, "items", itemID, realtime.KindDeleted)
	return nil
}

func (s *ListService) SubscribeUserLists(ctx context.Context, actorID string, fn func([]domain.List)) (func(), error) {
	return s.lists.SubscribeByMember(ctx, actorID, fn)
}

func (s *ListService) SubscribeListItems(ctx context.Context, actorID, listID string, fn func([]domain.Item)) (func(), error) {
	if _, err := s.memberList(ctx, actorID, listID); err != nil {
		return nil, err
	}
	return s.items.SubscribeByList(ctx, listID, fn)
}

// memberList loads the list and checks the actor belongs to it.
func (s *ListService) memberList(ctx context.Context, actorID, listID string) (domain.List, error) {
	list, err := s.lists.Get(ctx, listID)
	if err != nil {
		return domain.List{}, err
	}
	if !list.HasMember(actorID) && list.CreatorID != actorID {
		return domain.List{}, domain.ErrNotMember
	}
	return list, nil
}

func (s *ListService) publish(ctx context.Context, listID, collection, docID, kind string) {
	if s.events == nil {
		return
	}
	ev := realtime.Event{ListID: listID, Collection: collection, DocID: docID, Kind: kind}
	if err := s.events.Publish(ctx, ev); err != nil {
		slog.Warn("publishing list event", "listID", listID, "kind", kind, "error", err)
	}
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
