package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tasknest/internal/model"
	"tasknest/internal/pkg/metrics"
	"tasknest/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// RecoveryMailer 发送找回密码邮件的副作用协作者。
type RecoveryMailer interface {
	SendRecoveryEmail(toEmail string) error
}

// RecoverLimiter 对找回密码请求按邮箱限流。
type RecoverLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Handler 提供注册、登录与找回密码接口。
type Handler struct {
	store     *store.Store
	jwtSecret []byte
	tokenTTL  time.Duration
	mailer    RecoveryMailer
	limiter   RecoverLimiter
	logger    *slog.Logger
}

// NewHandler 创建 Auth Handler。
func NewHandler(st *store.Store, jwtSecret string, tokenTTL time.Duration, mailer RecoveryMailer, limiter RecoverLimiter, logger *slog.Logger) *Handler {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &Handler{
		store:     st,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		mailer:    mailer,
		limiter:   limiter,
		logger:    logger,
	}
}

type registerRequest struct {
	Email              string `json:"email" binding:"required,email"`
	Name               string `json:"name" binding:"required,min=1,max=255"`
	PasswordCredential string `json:"password_credential" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type recoverRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type customClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Register 创建新用户及其默认偏好，并签发会话令牌。
//
// 邮箱重复由存储层唯一索引报告（store.ErrConflict），
// 这里不做 SELECT 预检查，避免并发注册下的竞态。
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PasswordCredential), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "hash password failed"})
		return
	}

	user, _, err := h.store.CreateUser(c.Request.Context(), email, req.Name, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User with this email already exists"})
			return
		}
		h.logger.Error("create user failed", slog.String("email", email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "create user failed"})
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.logger.Error("sign token failed", slog.String("email", email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "sign token failed"})
		return
	}

	metrics.RegistrationsTotal.Inc()
	h.logger.Info("user registered", slog.String("email", email))
	c.JSON(http.StatusCreated, tokenResponse{Token: token, User: user})
}

// Login 校验邮箱与密码并返回新的会话令牌。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.store.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.logger.Error("sign token failed", slog.String("email", email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "sign token failed"})
		return
	}

	h.logger.Info("user logged in", slog.String("email", email))
	c.JSON(http.StatusOK, tokenResponse{Token: token, User: user})
}

// Recover 触发找回密码邮件。
//
// 404 表示邮箱不存在，502 表示发送失败，两者之外一律返回确认消息。
// 同一邮箱在窗口内的请求次数受限流器约束。
func (h *Handler) Recover(c *gin.Context) {
	var req recoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(c.Request.Context(), email)
		if err != nil {
			h.logger.Warn("recover ratelimit check failed", slog.String("email", email), slog.String("error", err.Error()))
		} else if !allowed {
			metrics.RecoverThrottledTotal.Inc()
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "too many requests"})
			return
		}
	}

	if _, err := h.store.GetUserByEmail(c.Request.Context(), email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query user failed"})
		return
	}

	if err := h.mailer.SendRecoveryEmail(email); err != nil {
		h.logger.Warn("send recovery email failed", slog.String("email", email), slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"message": "failed to send recovery email"})
		return
	}

	h.logger.Info("recovery email requested", slog.String("email", email))
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Recovery email sent to %s", email)})
}

// Logout 处理注销请求（会话无状态，客户端丢弃令牌即可）。
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) issueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := customClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: user.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

// bindMessage 把 gin 的绑定错误整理成指明字段与约束的消息。
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("field %s failed on the %q constraint", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}
