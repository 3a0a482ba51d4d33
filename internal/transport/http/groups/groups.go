package groups

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/corray333/littlelemon/internal/service/models/principal"
	"github.com/corray333/littlelemon/internal/service/models/user"
	"github.com/corray333/littlelemon/internal/service/services/staffsvc"
	"github.com/corray333/littlelemon/internal/transport/http/authn"
	"github.com/corray333/littlelemon/internal/transport/http/respond"
	"github.com/corray333/littlelemon/internal/transport/http/validate"
	"github.com/go-chi/chi/v5"
)

// service is an interface for the service layer.
type service interface {
	ListMembers(ctx context.Context, p principal.Principal, group string) ([]user.User, error)
	AddMember(ctx context.Context, p principal.Principal, group, username string) (user.User, error)
	RemoveMember(ctx context.Context, p principal.Principal, group string, userID int64) error
}

type addMemberRequest struct {
	Username string `json:"username" schema:"username"`
}

func decodeAddMember(r *http.Request) (*addMemberRequest, error) {
	req := &addMemberRequest{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		if err := validate.NewDecoder().Decode(req, r.PostForm); err != nil {
			return nil, err
		}
	default:
		// An empty body is a missing username, which the service reports.
		if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}

	return req, nil
}

// caller resolves the principal and the group named in the path.
func caller(r *http.Request) (principal.Principal, string, error) {
	p, err := authn.Principal(r)
	if err != nil {
		return principal.Principal{}, "", err
	}

	group, err := staffsvc.ResolveGroup(chi.URLParam(r, "group"))
	if err != nil {
		return principal.Principal{}, "", err
	}

	return p, group, nil
}

// ListMembers handles GET /groups/{group}/users.
func ListMembers(w http.ResponseWriter, r *http.Request, service service) {
	p, group, err := caller(r)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	users, err := service.ListMembers(r.Context(), p, group)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, users)
}

// AddMember handles POST /groups/{group}/users.
func AddMember(w http.ResponseWriter, r *http.Request, service service) {
	p, group, err := caller(r)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	req, err := decodeAddMember(r)
	if err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	u, err := service.AddMember(r.Context(), p, group, req.Username)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusCreated, u)
}

// RemoveMember handles DELETE /groups/{group}/users/{userId}.
func RemoveMember(w http.ResponseWriter, r *http.Request, service service) {
	p, group, err := caller(r)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	userID, err := validate.PathID(r, "userId")
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	if err := service.RemoveMember(r.Context(), p, group, userID); err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.NoContent(w)
}
