package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/Socialmailz/TNB-Text/internal/database"
	"github.com/Socialmailz/TNB-Text/internal/geo"
	"github.com/Socialmailz/TNB-Text/internal/handlers/dto"
	"github.com/Socialmailz/TNB-Text/internal/models"
	"github.com/Socialmailz/TNB-Text/internal/store"
	"github.com/Socialmailz/TNB-Text/pkg/auth"
)

type AuthHandler struct {
	db         *database.Database
	jwtManager *auth.JWTManager
	redis      *redis.Client
	store      store.Store
	geo        *geo.Client
}

func NewAuthHandler(db *database.Database, jwtMgr *auth.JWTManager, rdb *redis.Client, st store.Store, geoClient *geo.Client) *AuthHandler {
	return &AuthHandler{db: db, jwtManager: jwtMgr, redis: rdb, store: st, geo: geoClient}
}

// Register заводит учётку и сеет запись пользователя в directory
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot hash password"})
		return
	}

	account := &models.Account{
		Handle:       req.Handle,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := h.db.SaveAccount(account); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to create account"})
		return
	}

	uid := account.ID.String()
	record := models.UserRecord{
		UID:         uid,
		Handle:      req.Handle,
		DisplayName: req.Handle,
		Status:      models.StatusOffline,
		LastChanged: time.Now(),
		JoinedAt:    time.Now(),
	}
	if err := h.store.Set(c.Request.Context(), "directory", uid, record); err != nil {
		// учётка уже есть, запись справочника досеется при следующем входе
		log.Printf("register %s: directory seed failed: %v", uid, err)
	}

	token, err := h.jwtManager.Generate(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{UID: uid, Token: token})
}

// Login проверяет учётные данные, выдаёт JWT и дописывает историю входов
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.db.FindAccountByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	uid := account.ID.String()
	token, err := h.jwtManager.Generate(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	// история входов — best-effort, вход не ждёт внешних служб
	go h.recordLogin(uid, account.Handle, c.ClientIP())

	c.JSON(http.StatusOK, dto.AuthResponse{UID: uid, Token: token})
}

// Logout ставит токен в черный список в Redis до истечения
func (h *AuthHandler) Logout(c *gin.Context) {
	rawToken, err := auth.ExtractTokenFromHeader(c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := h.jwtManager.Expiry(rawToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ttl := time.Until(exp)
	h.redis.Set(context.Background(), "blacklist:"+rawToken, 1, ttl)

	c.Status(http.StatusOK)
}

// recordLogin дописывает {ip, время} в историю входов пользователя.
// История только растёт; любая ошибка здесь не мешает входу.
func (h *AuthHandler) recordLogin(uid, handle, ip string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if ip == "" {
		ip = h.geo.Address(ctx)
	}
	log.Printf("login %s (%s) from %s, position %s", handle, uid, ip, h.geo.Position(ctx, ip))

	var record models.UserRecord
	raw, ok, err := h.store.Get(ctx, "directory", uid)
	if err == nil && ok {
		_ = json.Unmarshal(raw, &record)
	}
	history := append(record.LoginHistory, models.LoginEntry{IP: ip, Timestamp: time.Now()})

	err = h.store.Patch(ctx, "directory", uid, map[string]interface{}{
		"last_login_ip": ip,
		"login_history": history,
	})
	if err != nil {
		log.Printf("login %s: history write failed: %v", uid, err)
	}
}
