package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/http/response"
	"github.com/aryansondharva/Aura/internal/platform/apierr"
	"github.com/aryansondharva/Aura/internal/platform/ctxutil"
)

// caller returns the authenticated owner, or writes a 401 and returns false.
func caller(c *gin.Context) (*ctxutil.RequestData, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondAPIError(c, apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("unauthorized")))
		return nil, false
	}
	return rd, true
}

// pathID parses a uuid path parameter. Malformed ids are reported as not found.
func pathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondAPIError(c, apierr.NotFound(what))
		return uuid.Nil, false
	}
	return id, true
}
