package cart

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"

	"github.com/corray333/littlelemon/internal/service/models/cartline"
	"github.com/corray333/littlelemon/internal/transport/http/authn"
	"github.com/corray333/littlelemon/internal/transport/http/respond"
	"github.com/corray333/littlelemon/internal/transport/http/validate"
)

// service is an interface for the service layer.
type service interface {
	Upsert(ctx context.Context, userID, menuItemID int64, quantity int) (cartline.UpsertResult, error)
	List(ctx context.Context, userID int64) ([]cartline.CartLine, error)
	Clear(ctx context.Context, userID int64) error
}

// upsertRequest accepts both JSON and form bodies. The quantity bound mirrors
// cartline.MaxQuantity.
type upsertRequest struct {
	MenuItem *int64 `json:"menuitem" schema:"menuitem" validate:"required"`
	Quantity *int   `json:"quantity" schema:"quantity" validate:"required,lte=1000"`
}

func decodeUpsert(r *http.Request) (*upsertRequest, error) {
	req := &upsertRequest{}

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
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			return nil, err
		}
	}

	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	return req, nil
}

// Upsert handles POST /cart/menu-items. The quantity replaces any existing one;
// zero removes the line and answers 204.
func Upsert(w http.ResponseWriter, r *http.Request, service service) {
	p, err := authn.Principal(r)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	req, err := decodeUpsert(r)
	if err != nil {
		respond.BadRequest(w, r, err)

		return
	}

	result, err := service.Upsert(r.Context(), p.UserID, *req.MenuItem, *req.Quantity)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	if result.Outcome == cartline.Removed {
		respond.NoContent(w)

		return
	}

	respond.JSON(w, r, http.StatusCreated, result.Line)
}

// List handles GET /cart/menu-items.
func List(w http.ResponseWriter, r *http.Request, service service) {
	p, err := authn.Principal(r)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	lines, err := service.List(r.Context(), p.UserID)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, r, http.StatusOK, lines)
}

// Clear handles DELETE /cart/menu-items.
func Clear(w http.ResponseWriter, r *http.Request, service service) {
	p, err := authn.Principal(r)
	if err != nil {
		respond.Error(w, r, err)

		return
	}

	if err := service.Clear(r.Context(), p.UserID); err != nil {
		respond.Error(w, r, err)

		return
	}

	respond.NoContent(w)
}
