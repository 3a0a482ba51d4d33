package staffsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/corray333/littlelemon/internal/dal/interfaces/iuow"
	"github.com/corray333/littlelemon/internal/service/models/principal"
	"github.com/corray333/littlelemon/internal/service/models/user"
	"github.com/corray333/littlelemon/internal/service/policy"
	"github.com/corray333/littlelemon/internal/service/svcerr"
	"go.opentelemetry.io/otel"
)

// groupSlugs maps URL segments to staff group names.
var groupSlugs = map[string]string{
	"manager":       user.GroupManager,
	"delivery-crew": user.GroupDeliveryCrew,
}

// ResolveGroup maps a URL segment such as "delivery-crew" to its group name.
func ResolveGroup(slug string) (string, error) {
	group, ok := groupSlugs[strings.ToLower(slug)]
	if !ok {
		return "", svcerr.NotFound("group %q not found", slug)
	}

	return group, nil
}

// StaffService is a service for managing staff group memberships.
type StaffService struct {
	newUOW iuow.Factory
}

// option is a function that configures the StaffService.
type option func(*StaffService)

// MustNewStaffService creates a new StaffService.
func MustNewStaffService(opts ...option) *StaffService {
	s := &StaffService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		panic("staffsvc: unit of work factory is not set")
	}

	return s
}

// WithUnitOfWork sets the unit of work factory for the StaffService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWork(factory iuow.Factory) option {
	return func(s *StaffService) {
		s.newUOW = factory
	}
}

// ListMembers lists the users in group.
func (s *StaffService) ListMembers(ctx context.Context, p principal.Principal, group string) ([]user.User, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "StaffService.ListMembers")
	defer span.End()

	if err := checkManager(p); err != nil {
		return nil, err
	}

	users, err := s.newUOW().UserRepository().ListByGroup(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s members: %w", group, err)
	}

	if users == nil {
		return []user.User{}, nil
	}

	return users, nil
}

// AddMember puts the user with the given username into group.
func (s *StaffService) AddMember(
	ctx context.Context,
	p principal.Principal,
	group, username string,
) (user.User, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "StaffService.AddMember")
	defer span.End()

	if err := checkManager(p); err != nil {
		return user.User{}, err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return user.User{}, svcerr.Validation("missing required parameter").
			WithFields(map[string]string{"username": "missing required parameter"})
	}

	work := s.newUOW()

	u, err := work.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, svcerr.ErrNotFound) {
			return user.User{}, err
		}

		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	if !u.InGroup(group) {
		if err := work.UserRepository().AddToGroup(ctx, u.ID, group); err != nil {
			return user.User{}, fmt.Errorf("failed to add user to %s: %w", group, err)
		}
		u.Groups = append(u.Groups, group)
	}

	slog.Info("Staff member added", "group", group, "user_id", u.ID, "by", p.UserID)

	return u, nil
}

// RemoveMember takes the user out of group.
func (s *StaffService) RemoveMember(ctx context.Context, p principal.Principal, group string, userID int64) error {
	ctx, span := otel.Tracer("service").Start(ctx, "StaffService.RemoveMember")
	defer span.End()

	if err := checkManager(p); err != nil {
		return err
	}

	removed, err := s.newUOW().UserRepository().RemoveFromGroup(ctx, userID, group)
	if err != nil {
		return fmt.Errorf("failed to remove user from %s: %w", group, err)
	}
	if !removed {
		return svcerr.NotFound("user %d is not in %s", userID, group)
	}

	slog.Info("Staff member removed", "group", group, "user_id", userID, "by", p.UserID)

	return nil
}

func checkManager(p principal.Principal) error {
	if !policy.CanManageStaff(p) {
		return svcerr.Forbidden("only managers can manage staff groups")
	}

	return nil
}
