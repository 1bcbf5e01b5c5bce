package controller

import (
	"errors"
	"strconv"

	"pairjudge_backend/internal/service"
	"pairjudge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController 管理端的标注者账号管理
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// ListAnnotators godoc
// @Summary 标注者列表
// @Tags 用户管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/annotators [get]
func (c *UserController) ListAnnotators(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := c.UserService.ListAnnotators(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: users, Total: total, Page: page, Limit: limit})
}

type DisableRequest struct {
	Disabled bool `json:"disabled"`
}

// SetDisabled godoc
// @Summary 启用/停用标注者
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   body body DisableRequest true "目标状态"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/annotators/{id}/disabled [put]
func (c *UserController) SetDisabled(ctx *gin.Context) {
	var req DisableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.UserService.SetDisabled(util.MustParseUint(ctx.Param("id")), req.Disabled)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
