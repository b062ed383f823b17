package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docuchat/docuchat/internal/middleware"
	"github.com/docuchat/docuchat/internal/pkg/errcode"
	appErr "github.com/docuchat/docuchat/internal/pkg/errors"
	"github.com/docuchat/docuchat/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

var errCodes = []struct {
	sentinel error
	code     int
}{
	{appErr.ErrUnauthorized, errcode.ErrUnauthorized},
	{appErr.ErrForbidden, errcode.ErrForbidden},
	{appErr.ErrNotFound, errcode.ErrNotFound},
	{appErr.ErrInvalid, errcode.ErrInvalid},
	{appErr.ErrConflict, errcode.ErrConflict},
	{appErr.ErrTooMany, errcode.ErrTooMany},
	{appErr.ErrUnsupportedFormat, errcode.ErrUnsupportedFormat},
	{appErr.ErrExtractionFailed, errcode.ErrExtractionFailed},
	{appErr.ErrEmptyDocument, errcode.ErrEmptyDocument},
	{appErr.ErrEmbeddingFailed, errcode.ErrEmbeddingFailed},
	{appErr.ErrStorageFailed, errcode.ErrStorageFailed},
	{appErr.ErrAnswerFailed, errcode.ErrAnswerFailed},
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	for _, entry := range errCodes {
		if errors.Is(err, entry.sentinel) {
			response.Error(c, entry.code, entry.sentinel.Error())
			return
		}
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	response.Error(c, errcode.ErrInternal, "internal error")
}
