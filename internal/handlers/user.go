package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Socialmailz/TNB-Text/internal/handlers/dto"
	"github.com/Socialmailz/TNB-Text/internal/middleware"
	"github.com/Socialmailz/TNB-Text/internal/models"
	"github.com/Socialmailz/TNB-Text/internal/store"
)

type UserHandler struct {
	store store.Store
}

func NewUserHandler(st store.Store) *UserHandler {
	return &UserHandler{store: st}
}

func (h *UserHandler) record(c *gin.Context, uid string) (models.UserRecord, bool) {
	var record models.UserRecord
	raw, ok, err := h.store.Get(c.Request.Context(), "directory", uid)
	if err != nil || !ok {
		return record, false
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return record, false
	}
	return record, true
}

// GetMe возвращает запись справочника текущего пользователя
func (h *UserHandler) GetMe(c *gin.Context) {
	uid := c.MustGet(middleware.UserIDKey).(string)

	record, ok := h.record(c, uid)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// UpdateMe обновляет профильные поля текущего пользователя
func (h *UserHandler) UpdateMe(c *gin.Context) {
	uid := c.MustGet(middleware.UserIDKey).(string)

	var req dto.UpdateProfilePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Обновляем только переданные поля
	fields := make(map[string]interface{})
	if req.DisplayName != "" {
		fields["display_name"] = req.DisplayName
	}
	if req.Bio != "" {
		fields["bio"] = req.Bio
	}
	if req.AvatarURL != "" {
		fields["avatar_url"] = req.AvatarURL
	}
	if len(fields) == 0 {
		c.Status(http.StatusOK)
		return
	}

	if err := h.store.Patch(c.Request.Context(), "directory", uid, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.Status(http.StatusOK)
}

// UpdateFlags переключает модерационные флаги. Только администратору.
func (h *UserHandler) UpdateFlags(c *gin.Context) {
	uid := c.MustGet(middleware.UserIDKey).(string)
	target := c.Param("uid")

	me, ok := h.record(c, uid)
	if !ok || !me.Flags.Admin {
		c.JSON(http.StatusForbidden, gin.H{"error": "administrator privilege required"})
		return
	}

	if _, ok := h.record(c, target); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var flags models.UserFlags
	if err := c.ShouldBindJSON(&flags); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.store.Patch(c.Request.Context(), "directory", target, map[string]interface{}{
		"flags": flags,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update flags"})
		return
	}
	c.Status(http.StatusOK)
}
