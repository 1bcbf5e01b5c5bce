package controller

import (
	"pairjudge_backend/internal/service"
	"pairjudge_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AnalyticsController 管理端分析接口
type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// Overview godoc
// @Summary 问卷级汇总
// @Tags 分析
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response{data=model.QuestionnaireOverview}
// @Failure 404 {object} util.Response
// @Router /api/admin/questionnaires/{id}/analytics/overview [get]
func (c *AnalyticsController) Overview(ctx *gin.Context) {
	ov, err := c.AnalyticsService.Overview(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, ov)
}

// WinnerShares godoc
// @Summary 每题的偏好分布与置信度
// @Description 含 Wilson 置信区间与双比例显著性检验
// @Tags 分析
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response{data=[]model.WinnerShare}
// @Router /api/admin/questionnaires/{id}/analytics/winners [get]
func (c *AnalyticsController) WinnerShares(ctx *gin.Context) {
	shares, err := c.AnalyticsService.WinnerShares(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, shares)
}

// DimensionBreakdown godoc
// @Summary 某题按维度的胜负拆解
// @Tags 分析
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Success 200 {object} util.Response{data=[]model.DimensionBreakdown}
// @Failure 404 {object} util.Response
// @Router /api/admin/questions/{questionId}/analytics/dimensions [get]
func (c *AnalyticsController) DimensionBreakdown(ctx *gin.Context) {
	rows, err := c.AnalyticsService.DimensionBreakdown(util.MustParseUint(ctx.Param("questionId")))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, rows)
}

// AnnotatorQuality godoc
// @Summary 标注者质量视图
// @Description 陷阱题通过率与平均注视时长
// @Tags 分析
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response{data=[]model.AnnotatorQuality}
// @Router /api/admin/questionnaires/{id}/analytics/annotators [get]
func (c *AnalyticsController) AnnotatorQuality(ctx *gin.Context) {
	rows, err := c.AnalyticsService.AnnotatorQuality(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// DurationHistogram godoc
// @Summary 注视时长分布直方图
// @Tags 分析
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response{data=[]model.DurationBucket}
// @Router /api/admin/questionnaires/{id}/analytics/durations [get]
func (c *AnalyticsController) DurationHistogram(ctx *gin.Context) {
	rows, err := c.AnalyticsService.DurationHistogram(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}
