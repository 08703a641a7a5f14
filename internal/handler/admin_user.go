package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jrosariodev/cultural-center-api/internal/middleware"
	"github.com/jrosariodev/cultural-center-api/internal/repository"
	"github.com/jrosariodev/cultural-center-api/pkg/validator"
)

// AdminUserHandler covers member administration: listing, profile
// edits, role changes and soft deletion.
type AdminUserHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAdminUserHandler(u *repository.UserRepo, t *repository.TokenRepo) *AdminUserHandler {
	return &AdminUserHandler{Users: u, Tokens: t}
}

// List pages through non-deleted users.
func (h *AdminUserHandler) List(c echo.Context) error {
	offset, limit := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, total, err := h.Users.List(ctx, offset, limit)
	if err != nil {
		return httpError(c, err)
	}
	resp := make([]userPart, 0, len(users))
	for i := range users {
		resp = append(resp, toUserPart(&users[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "users": resp})
}

// Get returns one user's profile.
func (h *AdminUserHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// Update edits a user's profile fields on their behalf.
func (h *AdminUserHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Validate(c.Request().Context(), req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, id, req.Name, req.Phone, req.Age, req.Location); err != nil {
		return httpError(c, err)
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

type setRoleReq struct {
	IsAdmin bool `json:"is_admin"`
}

// SetRole grants or revokes admin. Self-demotion is rejected so the
// last admin cannot lock everyone out.
func (h *AdminUserHandler) SetRole(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req setRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !req.IsAdmin && id == middleware.CurrentUserID(c) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot remove your own admin role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.SetAdmin(ctx, id, req.IsAdmin); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_admin": req.IsAdmin})
}

// Delete soft-deletes a user and revokes their sessions. Reservation
// history stays for reporting.
func (h *AdminUserHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if id == middleware.CurrentUserID(c) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete your own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.SoftDelete(ctx, id); err != nil {
		return httpError(c, err)
	}
	_ = h.Tokens.RevokeAllForUser(ctx, id)
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

type bulkReq struct {
	Action  string   `json:"action"` // delete | make_admin | remove_admin
	UserIDs []uint64 `json:"user_ids"`
}

// Bulk applies one action to many users. Failures are reported per id
// instead of aborting the batch.
func (h *AdminUserHandler) Bulk(c echo.Context) error {
	var req bulkReq
	if err := c.Bind(&req); err != nil || len(req.UserIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action and user_ids required"})
	}
	self := middleware.CurrentUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	done := make([]uint64, 0, len(req.UserIDs))
	failed := map[uint64]string{}
	for _, id := range req.UserIDs {
		var err error
		switch req.Action {
		case "delete":
			if id == self {
				failed[id] = "cannot delete your own account"
				continue
			}
			if err = h.Users.SoftDelete(ctx, id); err == nil {
				_ = h.Tokens.RevokeAllForUser(ctx, id)
			}
		case "make_admin":
			err = h.Users.SetAdmin(ctx, id, true)
		case "remove_admin":
			if id == self {
				failed[id] = "cannot remove your own admin role"
				continue
			}
			err = h.Users.SetAdmin(ctx, id, false)
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown action"})
		}
		if err != nil {
			failed[id] = err.Error()
			continue
		}
		done = append(done, id)
	}
	return c.JSON(http.StatusOK, echo.Map{"done": done, "failed": failed})
}
