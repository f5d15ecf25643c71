package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/platform/ctxutil"
	"github.com/yungbote/scandine-backend/internal/platform/imaging"
)

// multipartMemory bounds the in-memory part of a multipart form.
const multipartMemory = 16 << 20

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return uuid.Nil, apierr.BadRequest("invalid_"+name, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// callerShopID is set by the tenant middleware on owner routes.
func callerShopID(c *gin.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.ShopID == uuid.Nil {
		return uuid.Nil, apierr.Forbidden("no_shop", "No shop is linked to this account")
	}
	return rd.ShopID, nil
}

func callerUserID(c *gin.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("unauthorized", "not signed in")
	}
	return rd.UserID, nil
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formFile reads an optional upload. A missing field yields nil, nil.
func formFile(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apierr.New(http.StatusBadRequest, "invalid_multipart_form", err)
	}
	if fh.Size > imaging.MaxUploadBytes {
		return nil, apierr.TooLarge("image_too_large", fmt.Sprintf("image exceeds %d MB", imaging.MaxUploadBytes>>20))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, imaging.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// formBool treats a ticked checkbox ("on") and the usual truthy spellings as true.
func formBool(c *gin.Context, field string) bool {
	v := strings.ToLower(strings.TrimSpace(c.PostForm(field)))
	switch v {
	case "on", "yes":
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func formFloat(c *gin.Context, field string) (*float64, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apierr.BadRequest("invalid_"+field, fmt.Sprintf("%s must be a number", field))
	}
	return &f, nil
}

func formUUID(c *gin.Context, field string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierr.BadRequest("invalid_"+field, fmt.Sprintf("invalid %s", field))
	}
	return &id, nil
}
