package identitysvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/corray333/littlelemon/internal/dal/interfaces/iuow"
	"github.com/corray333/littlelemon/internal/service/models/principal"
	"github.com/corray333/littlelemon/internal/service/svcerr"
)

// IdentityService turns an authenticated user id into a principal with its
// current group memberships.
type IdentityService struct {
	newUOW iuow.Factory
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(factory iuow.Factory) *IdentityService {
	return &IdentityService{newUOW: factory}
}

// Resolve loads the principal for userID.
func (s *IdentityService) Resolve(ctx context.Context, userID int64) (principal.Principal, error) {
	u, err := s.newUOW().UserRepository().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, svcerr.ErrNotFound) {
			return principal.Principal{}, svcerr.Unauthenticated("unknown user").WithCause(err)
		}

		return principal.Principal{}, fmt.Errorf("failed to resolve user: %w", err)
	}

	return principal.Principal{
		UserID:   u.ID,
		Username: u.Username,
		Groups:   u.Groups,
	}, nil
}
