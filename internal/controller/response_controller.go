package controller

import (
	"errors"

	"pairjudge_backend/internal/service"
	"pairjudge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ResponseController 提交与提交结果查询
type ResponseController struct {
	ResponseService *service.ResponseService
	DraftService    *service.DraftService
	CaptchaService  *service.CaptchaService
}

func NewResponseController(
	responseService *service.ResponseService,
	draftService *service.DraftService,
	captchaService *service.CaptchaService,
) *ResponseController {
	return &ResponseController{
		ResponseService: responseService,
		DraftService:    draftService,
		CaptchaService:  captchaService,
	}
}

// Submit godoc
// @Summary 提交标注结果
// @Description 服务端重算资格；不满足时返回 422 并携带逐项原因
// @Tags 标注
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Param   body body service.SubmitInput true "提交请求"
// @Success 201 {object} util.Response{data=model.Response}
// @Failure 403 {object} util.Response "人机验证失败"
// @Failure 409 {object} util.Response "重复提交"
// @Failure 422 {object} util.Response{data=tracking.EligibilitySnapshot} "资格不满足"
// @Router /api/questions/{questionId}/submit [post]
func (c *ResponseController) Submit(ctx *gin.Context) {
	var req service.SubmitInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)

	// 可信设备免人机验证
	cookie, _ := ctx.Cookie("trust_device_token")
	_, trusted := c.CaptchaService.VerifyTrustDeviceToken(cookie)

	resp, err := c.ResponseService.Submit(claims.UserID, util.MustParseUint(ctx.Param("questionId")), &req, trusted)
	if err != nil {
		var rejected *service.RejectedError
		switch {
		case errors.As(err, &rejected):
			util.UnprocessableEntity(ctx, "submission requirements not met", rejected.Snapshot)
		case errors.Is(err, util.ErrCaptchaInvalid):
			util.Error(ctx, 403, "请先完成人机验证")
		case errors.Is(err, util.ErrAlreadySubmitted):
			util.Conflict(ctx, "question already submitted")
		case errors.Is(err, util.ErrSessionNotFound), errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	if req.RememberDevice && !trusted {
		if token, err := c.CaptchaService.GenerateTrustDeviceToken(claims.UserID); err == nil {
			ctx.SetCookie("trust_device_token", token, 15*24*3600, "/", "", false, true)
		}
	}

	util.Created(ctx, resp)
}

// MyResponse godoc
// @Summary 查看自己的某次提交
// @Tags 标注
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Success 200 {object} util.Response{data=model.Response}
// @Failure 404 {object} util.Response
// @Router /api/questions/{questionId}/response [get]
func (c *ResponseController) MyResponse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	resp, err := c.ResponseService.MyResponse(claims.UserID, util.MustParseUint(ctx.Param("questionId")))
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, resp)
}

// MyDrafts godoc
// @Summary 我的进行中草稿
// @Tags 标注
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.AnswerDraft}
// @Router /api/drafts [get]
func (c *ResponseController) MyDrafts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	drafts, err := c.DraftService.ListDrafts(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, drafts)
}
