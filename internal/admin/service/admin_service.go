package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shoplist-app/shoplist-backend/internal/admin/domain"
	"github.com/shoplist-app/shoplist-backend/internal/admin/repository"
	groupdomain "github.com/shoplist-app/shoplist-backend/internal/groups/domain"
	grouprepo "github.com/shoplist-app/shoplist-backend/internal/groups/repository"
	listdomain "github.com/shoplist-app/shoplist-backend/internal/lists/domain"
	listrepo "github.com/shoplist-app/shoplist-backend/internal/lists/repository"
	userdomain "github.com/shoplist-app/shoplist-backend/internal/users/domain"
	userrepo "github.com/shoplist-app/shoplist-backend/internal/users/repository"
)

// AdminService backs the admin panel. The audit repository is optional:
// when no audit database is configured, admin actions are only logged.
type AdminService struct {
	users      *userrepo.UserRepository
	lists      *listrepo.ListRepository
	groups     *grouprepo.GroupRepository
	audit      *repository.AuditRepository
	adminEmail string
}

func NewAdminService(
	users *userrepo.UserRepository,
	lists *listrepo.ListRepository,
	groups *grouprepo.GroupRepository,
	audit *repository.AuditRepository,
	adminEmail string,
) *AdminService {
	return &AdminService{
		users:      users,
		lists:      lists,
		groups:     groups,
		audit:      audit,
		adminEmail: strings.ToLower(adminEmail),
	}
}

// Overview returns the active users and the lists that still involve at
// least one of them, with active/archived counts.
func (s *AdminService) Overview(ctx context.Context) (domain.Overview, error) {
	allUsers, err := s.users.ListAll(ctx)
	if err != nil {
		return domain.Overview{}, err
	}

	activeUsers := make([]userdomain.User, 0, len(allUsers))
	activeIDs := make(map[string]bool, len(allUsers))
	for _, u := range allUsers {
		if u.Deleted || u.Email == s.adminEmail {
			continue
		}
		activeUsers = append(activeUsers, u)
		activeIDs[u.UID] = true
	}

	allLists, err := s.lists.ListAll(ctx)
	if err != nil {
		return domain.Overview{}, err
	}

	overview := domain.Overview{Users: activeUsers, Lists: make([]listdomain.List, 0, len(allLists))}
	for _, l := range allLists {
		if !involvesActiveUser(l, activeIDs) {
			continue
		}
		overview.Lists = append(overview.Lists, l)
		if l.IsArchived {
			overview.ArchivedLists++
		} else {
			overview.ActiveLists++
		}
	}

	return overview, nil
}

// DeleteList cascade-deletes any list on behalf of the admin.
func (s *AdminService) DeleteList(ctx context.Context, actorEmail, listID string) error {
	if _, err := s.lists.Get(ctx, listID); err != nil {
		return err
	}
	if err := s.lists.DeleteWithItems(ctx, listID); err != nil {
		return err
	}
	s.record(ctx, actorEmail, "delete_list", listID, "")
	return nil
}

// DeleteUser runs the account-deletion cascade. For every list the user is
// involved in: a list where they are the sole participant is deleted with
// its items; a list they created is handed to the lowest remaining member
// UID; otherwise they are just removed. Each list is processed
// independently: one failure is reported and the rest continue. Afterwards
// the user document is soft-deleted (the identity-provider record cannot be
// removed without the user's own fresh credential).
func (s *AdminService) DeleteUser(ctx context.Context, actorEmail, userID string) (domain.DeleteUserReport, error) {
	report := domain.DeleteUserReport{UserID: userID}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return report, err
	}

	involved, err := s.listsInvolving(ctx, userID)
	if err != nil {
		return report, err
	}

	for _, list := range involved {
		if err := s.detachFromList(ctx, list, userID, &report); err != nil {
			slog.Error("account-deletion cascade failed for list",
				"userID", userID, "listID", list.ID, "error", err)
			report.Failures = append(report.Failures, domain.ListFailure{
				ListID: list.ID,
				Error:  err.Error(),
			})
		}
	}

	if err := s.users.MarkDeleted(ctx, userID); err != nil {
		return report, fmt.Errorf("soft-deleting user: %w", err)
	}

	s.record(ctx, actorEmail, "delete_user", userID,
		fmt.Sprintf("deleted %d lists, updated %d lists, %d failures",
			len(report.DeletedLists), len(report.UpdatedLists), len(report.Failures)))
	return report, nil
}

func (s *AdminService) detachFromList(ctx context.Context, list listdomain.List, userID string, report *domain.DeleteUserReport) error {
	unique := uniqueParticipants(list)

	if len(unique) == 1 && unique[0] == userID {
		if err := s.lists.DeleteWithItems(ctx, list.ID); err != nil {
			return err
		}
		report.DeletedLists = append(report.DeletedLists, list.ID)
		return nil
	}

	if list.CreatorID == userID {
		remaining := without(list.Members, userID)
		// Deterministic successor: lowest remaining member UID.
		sorted := append([]string(nil), remaining...)
		sort.Strings(sorted)
		if err := s.lists.TransferCreator(ctx, list.ID, sorted[0], remaining); err != nil {
			return err
		}
		report.UpdatedLists = append(report.UpdatedLists, list.ID)
		return nil
	}

	if err := s.lists.RemoveMember(ctx, list.ID, userID); err != nil {
		return err
	}
	report.UpdatedLists = append(report.UpdatedLists, list.ID)
	return nil
}

// RecentAudit returns the latest audit entries, newest first.
func (s *AdminService) RecentAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if s.audit == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.audit.Recent(ctx, limit)
}

// ReportDanglingGroupLinks finds lists whose linked group no longer exists.
// Dangling links are reported, never repaired: group deletion intentionally
// leaves linked lists untouched.
func (s *AdminService) ReportDanglingGroupLinks(ctx context.Context) ([]string, error) {
	allLists, err := s.lists.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var dangling []string
	for _, l := range allLists {
		if l.LinkedGroupID == "" {
			continue
		}
		_, err := s.groups.Get(ctx, l.LinkedGroupID)
		if err == groupdomain.ErrGroupNotFound {
			dangling = append(dangling, l.ID)
			slog.Warn("list links to a deleted group", "listID", l.ID, "groupID", l.LinkedGroupID)
			continue
		}
		if err != nil {
			return nil, err
		}
	}

	if len(dangling) > 0 {
		s.record(ctx, "system", "dangling_group_links", strings.Join(dangling, ","),
			fmt.Sprintf("%d lists reference deleted groups", len(dangling)))
	}
	return dangling, nil
}

func (s *AdminService) listsInvolving(ctx context.Context, userID string) ([]listdomain.List, error) {
	asMember, err := s.lists.ListByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	asCreator, err := s.lists.ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(asMember))
	merged := make([]listdomain.List, 0, len(asMember)+len(asCreator))
	for _, l := range append(asMember, asCreator...) {
		if !seen[l.ID] {
			seen[l.ID] = true
			merged = append(merged, l)
		}
	}
	return merged, nil
}

func (s *AdminService) record(ctx context.Context, actorEmail, action, subject, detail string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, &domain.AuditEntry{
		ActorEmail: actorEmail,
		Action:     action,
		Subject:    subject,
		Detail:     detail,
	})
	if err != nil {
		slog.Error("recording audit entry", "action", action, "subject", subject, "error", err)
	}
}

func involvesActiveUser(list listdomain.List, activeIDs map[string]bool) bool {
	if activeIDs[list.CreatorID] {
		return true
	}
	for _, m := range list.Members {
		if activeIDs[m] {
			return true
		}
	}
	return false
}

func uniqueParticipants(list listdomain.List) []string {
	seen := make(map[string]bool, len(list.Members)+1)
	out := make([]string, 0, len(list.Members)+1)
	for _, uid := range append([]string{list.CreatorID}, list.Members...) {
		if !seen[uid] {
			seen[uid] = true
			out = append(out, uid)
		}
	}
	return out
}

func without(uids []string, drop string) []string {
	out := make([]string, 0, len(uids))
	for _, uid := range uids {
		if uid != drop {
			out = append(out, uid)
		}
	}
	return out
}
