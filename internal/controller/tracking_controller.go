package controller

import (
	"errors"

	"pairjudge_backend/internal/service"
	"pairjudge_backend/internal/tracking"
	"pairjudge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TrackingController 答题会话：窗口事件上报、校验码、判断录入与资格查询
type TrackingController struct {
	TrackingService *service.TrackingService
}

func NewTrackingController(trackingService *service.TrackingService) *TrackingController {
	return &TrackingController{TrackingService: trackingService}
}

func (c *TrackingController) handleSessionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrQuestionnaireNotActive):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrAlreadySubmitted):
		util.Conflict(ctx, "question already submitted")
	case errors.Is(err, tracking.ErrUnknownLink),
		errors.Is(err, tracking.ErrUnknownDimension),
		errors.Is(err, util.ErrUnknownEventType):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, tracking.ErrResourceBlocked):
		util.Error(ctx, 409, "external window blocked")
	default:
		util.LogInternalError(ctx, err)
	}
}

// StartSession godoc
// @Summary 建立答题会话
// @Description 建立（或复用）某题的会话并恢复已有草稿
// @Tags 标注
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "已提交"
// @Router /api/questions/{questionId}/session [post]
func (c *TrackingController) StartSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	view, err := c.TrackingService.StartSession(claims.UserID, util.MustParseUint(ctx.Param("questionId")))
	if err != nil {
		c.handleSessionError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// ReportEvent godoc
// @Summary 上报外部窗口事件
// @Description open/blocked/loaded/focus/blur/closed/heartbeat/host_focus，时间戳为客户端毫秒
// @Tags 标注
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Param   body body service.WindowEvent true "事件"
// @Success 200 {object} util.Response{data=service.OpenResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{questionId}/events [post]
func (c *TrackingController) ReportEvent(ctx *gin.Context) {
	var req service.WindowEvent
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.TrackingService.ReportEvent(claims.UserID, util.MustParseUint(ctx.Param("questionId")), &req)
	if err != nil {
		c.handleSessionError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type VerificationCodeRequest struct {
	LinkID string `json:"linkId" binding:"required,oneof=a b"`
	Code   string `json:"code" binding:"required"`
}

// SetVerificationCode godoc
// @Summary 录入链接校验码
// @Description 与页面内嵌码大小写敏感比对
// @Tags 标注
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Param   body body VerificationCodeRequest true "校验码"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/questions/{questionId}/verification [post]
func (c *TrackingController) SetVerificationCode(ctx *gin.Context) {
	var req VerificationCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	valid, err := c.TrackingService.SetVerificationCode(claims.UserID, util.MustParseUint(ctx.Param("questionId")), req.LinkID, req.Code)
	if err != nil {
		c.handleSessionError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"valid": valid})
}

type JudgmentRequest struct {
	DimensionID string `json:"dimensionId" binding:"required"`
	Winner      string `json:"winner" binding:"omitempty,oneof=a b tie"`
	Notes       string `json:"notes"`
}

// SetJudgment godoc
// @Summary 录入某维度的判断
// @Tags 标注
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Param   body body JudgmentRequest true "判断"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/questions/{questionId}/judgments [put]
func (c *TrackingController) SetJudgment(ctx *gin.Context) {
	var req JudgmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	err := c.TrackingService.SetJudgment(claims.UserID, util.MustParseUint(ctx.Param("questionId")), req.DimensionID, tracking.Winner(req.Winner), req.Notes)
	if err != nil {
		c.handleSessionError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type OverallWinnerRequest struct {
	Winner string `json:"winner" binding:"required,oneof=a b tie"`
}

// SetOverallWinner godoc
// @Summary 录入总体胜者
// @Tags 标注
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Param   body body OverallWinnerRequest true "总体胜者"
// @Success 200 {object} util.Response
// @Router /api/questions/{questionId}/overall-winner [put]
func (c *TrackingController) SetOverallWinner(ctx *gin.Context) {
	var req OverallWinnerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	err := c.TrackingService.SetOverallWinner(claims.UserID, util.MustParseUint(ctx.Param("questionId")), tracking.Winner(req.Winner))
	if err != nil {
		c.handleSessionError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetEligibility godoc
// @Summary 查询提交资格
// @Description 服务端重算的资格快照，前端可高频轮询
// @Tags 标注
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Success 200 {object} util.Response{data=tracking.EligibilitySnapshot}
// @Failure 404 {object} util.Response
// @Router /api/questions/{questionId}/eligibility [get]
func (c *TrackingController) GetEligibility(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	snap, err := c.TrackingService.Eligibility(claims.UserID, util.MustParseUint(ctx.Param("questionId")))
	if err != nil {
		c.handleSessionError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// GetVisitStatus godoc
// @Summary 查询某链接的实时访问视图
// @Tags 标注
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Param   linkId path string true "链接 a|b"
// @Success 200 {object} util.Response{data=tracking.LinkVisitSnapshot}
// @Router /api/questions/{questionId}/visits/{linkId} [get]
func (c *TrackingController) GetVisitStatus(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	snap, err := c.TrackingService.VisitStatus(claims.UserID, util.MustParseUint(ctx.Param("questionId")), ctx.Param("linkId"))
	if err != nil {
		c.handleSessionError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// EndSession godoc
// @Summary 结束答题会话
// @Description 结算时长、保存草稿并释放会话，可稍后重新进入
// @Tags 标注
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{questionId}/session [delete]
func (c *TrackingController) EndSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.TrackingService.EndSession(claims.UserID, util.MustParseUint(ctx.Param("questionId"))); err != nil {
		c.handleSessionError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
