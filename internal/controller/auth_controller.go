package controller

import (
	"errors"
	"net/http"

	"pairjudge_backend/internal/model"
	"pairjudge_backend/internal/service"
	"pairjudge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService    *service.AuthService
	CaptchaService *service.CaptchaService
	IsRelease      bool // 是否为生产环境
}

func NewAuthController(authService *service.AuthService, captchaService *service.CaptchaService, isRelease bool) *AuthController {
	return &AuthController{
		AuthService:    authService,
		CaptchaService: captchaService,
		IsRelease:      isRelease,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Language string `json:"language" binding:"omitempty,oneof=zh en"`
}

// Register godoc
// @Summary 注册标注者账号
// @Description 注册即为标注者角色，管理员账号由运维脚本创建
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "注册信息"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Language: req.Language,
		Role:     model.Annotator,
	}

	err := c.AuthService.Register(user)
	switch {
	case err == nil:
		util.Created(ctx, gin.H{"id": user.ID})
	case errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, "该邮箱已被注册")
	default:
		util.LogInternalError(ctx, err)
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 用户登录
// @Description 验证凭据并签发 JWT
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录凭据"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 401 {object} util.Response "邮箱或密码错误"
// @Failure 403 {object} util.Response "账号已被禁用"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAccountDisabled) {
			util.Error(ctx, http.StatusForbidden, "账号已被禁用")
		} else {
			util.Unauthorized(ctx)
		}
		return
	}

	util.Success(ctx, gin.H{"token": token})
}

// CaptchaVerifyRequest 滑块轨迹
type CaptchaVerifyRequest struct {
	Trajectory []service.TrajectoryPoint `json:"trajectory"`
	Duration   int                       `json:"duration"`
}

// VerifyCaptcha godoc
// @Summary 验证码校验
// @Description 根据滑动轨迹判断是否为真人，通过后签发一次性 Token，提交时消费
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body CaptchaVerifyRequest true "轨迹数据"
// @Success 200 {object} util.Response{data=object} "验证通过"
// @Failure 400 {object} util.Response "验证失败"
// @Router /api/auth/captcha/verify [post]
func (c *AuthController) VerifyCaptcha(ctx *gin.Context) {
	var req CaptchaVerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.CaptchaService.VerifyTrajectory(req.Trajectory, req.Duration)
	if err != nil {
		util.Error(ctx, http.StatusBadRequest, "人机验证失败")
		return
	}

	util.Success(ctx, gin.H{"captcha_token": token})
}

// CheckCaptchaSkip godoc
// @Summary 检查是否可以跳过验证码
// @Description 可信设备 Cookie 仍有效时前端无需展示滑块
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/auth/captcha/check-skip [get]
func (c *AuthController) CheckCaptchaSkip(ctx *gin.Context) {
	cookie, err := ctx.Cookie("trust_device_token")
	if err != nil {
		util.Success(ctx, gin.H{"shouldVerify": true})
		return
	}

	_, valid := c.CaptchaService.VerifyTrustDeviceToken(cookie)
	util.Success(ctx, gin.H{"shouldVerify": !valid})
}

// GetProfile godoc
// @Summary 获取当前用户资料
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"language":  user.Language,
		"lastLogin": user.LastLogin,
		"createdAt": user.CreatedAt,
	})
}
