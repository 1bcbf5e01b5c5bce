package controller

import (
	"errors"
	"net/http"
	"strconv"

	"pairjudge_backend/internal/model"
	"pairjudge_backend/internal/service"
	"pairjudge_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// QuestionnaireController 管理端的问卷与题目维护，以及标注端的只读列表
type QuestionnaireController struct {
	QuestionnaireService *service.QuestionnaireService
	StorageService       *service.StorageService
	ExportService        *service.ExportService
}

func NewQuestionnaireController(
	questionnaireService *service.QuestionnaireService,
	storageService *service.StorageService,
	exportService *service.ExportService,
) *QuestionnaireController {
	return &QuestionnaireController{
		QuestionnaireService: questionnaireService,
		StorageService:       storageService,
		ExportService:        exportService,
	}
}

// Create godoc
// @Summary 创建问卷
// @Tags 问卷管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.QuestionnaireInput true "问卷信息"
// @Success 201 {object} util.Response{data=model.Questionnaire}
// @Failure 400 {object} util.Response
// @Router /api/admin/questionnaires [post]
func (c *QuestionnaireController) Create(ctx *gin.Context) {
	var req service.QuestionnaireInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	q, err := c.QuestionnaireService.Create(claims.UserID, &req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// Update godoc
// @Summary 更新问卷
// @Tags 问卷管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Param   body body service.QuestionnaireInput true "问卷信息"
// @Success 200 {object} util.Response{data=model.Questionnaire}
// @Failure 404 {object} util.Response
// @Router /api/admin/questionnaires/{id} [put]
func (c *QuestionnaireController) Update(ctx *gin.Context) {
	var req service.QuestionnaireInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionnaireService.Update(util.MustParseUint(ctx.Param("id")), &req)
	if err != nil {
		if errors.Is(err, util.ErrQuestionnaireNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, q)
}

type StatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft active closed"`
}

// SetStatus godoc
// @Summary 问卷状态流转
// @Description draft/active/closed，激活要求至少一道题
// @Tags 问卷管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Param   body body StatusRequest true "目标状态"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/admin/questionnaires/{id}/status [put]
func (c *QuestionnaireController) SetStatus(ctx *gin.Context) {
	var req StatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.QuestionnaireService.SetStatus(util.MustParseUint(ctx.Param("id")), model.QuestionnaireStatus(req.Status))
	if err != nil {
		if errors.Is(err, util.ErrQuestionnaireNotFound) {
			util.NotFound(ctx)
		} else if errors.Is(err, util.ErrQuestionNotFound) {
			util.BadRequest(ctx, "cannot activate questionnaire without questions")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// Delete godoc
// @Summary 删除问卷
// @Description 已有提交的问卷不可删除
// @Tags 问卷管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/admin/questionnaires/{id} [delete]
func (c *QuestionnaireController) Delete(ctx *gin.Context) {
	err := c.QuestionnaireService.Delete(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrQuestionnaireHasResponse) {
			util.Conflict(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// Get godoc
// @Summary 问卷详情（含题目）
// @Tags 问卷管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response{data=model.Questionnaire}
// @Failure 404 {object} util.Response
// @Router /api/admin/questionnaires/{id} [get]
func (c *QuestionnaireController) Get(ctx *gin.Context) {
	q, err := c.QuestionnaireService.Get(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrQuestionnaireNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, q)
}

// List godoc
// @Summary 问卷列表
// @Tags 问卷管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Param   status query string false "状态筛选"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/questionnaires [get]
func (c *QuestionnaireController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	list, total, err := c.QuestionnaireService.List(page, limit, model.QuestionnaireStatus(ctx.Query("status")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: list, Total: total, Page: page, Limit: limit})
}

// AddQuestion godoc
// @Summary 新增对比题
// @Tags 问卷管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Param   body body service.QuestionInput true "题目信息"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 404 {object} util.Response
// @Router /api/admin/questionnaires/{id}/questions [post]
func (c *QuestionnaireController) AddQuestion(ctx *gin.Context) {
	var req service.QuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionnaireService.AddQuestion(util.MustParseUint(ctx.Param("id")), &req)
	if err != nil {
		if errors.Is(err, util.ErrQuestionnaireNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新对比题
// @Tags 问卷管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Param   body body service.QuestionInput true "题目信息"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 404 {object} util.Response
// @Router /api/admin/questions/{questionId} [put]
func (c *QuestionnaireController) UpdateQuestion(ctx *gin.Context) {
	var req service.QuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionnaireService.UpdateQuestion(util.MustParseUint(ctx.Param("questionId")), &req)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除对比题
// @Tags 问卷管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{questionId} [delete]
func (c *QuestionnaireController) DeleteQuestion(ctx *gin.Context) {
	if err := c.QuestionnaireService.DeleteQuestion(util.MustParseUint(ctx.Param("questionId"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadScreenshot godoc
// @Summary 上传题目链接截图
// @Description side 取 a 或 b，仅接受图片
// @Tags 问卷管理
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   questionId path int true "题目ID"
// @Param   side formData string true "链接侧 a|b"
// @Param   file formData file true "截图文件"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/admin/questions/{questionId}/screenshot [post]
func (c *QuestionnaireController) UploadScreenshot(ctx *gin.Context) {
	questionID := util.MustParseUint(ctx.Param("questionId"))
	side := ctx.PostForm("side")
	if side != "a" && side != "b" {
		util.BadRequest(ctx, "side must be a or b")
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionnaireService.GetQuestion(questionID)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	url, err := c.StorageService.UploadScreenshot(ctx.Request.Context(), questionID, file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if side == "a" {
		q.LinkAScreenshot = url
	} else {
		q.LinkBScreenshot = url
	}
	if _, err := c.QuestionnaireService.UpdateQuestion(questionID, &service.QuestionInput{
		Title:              q.Title,
		LinkAURL:           q.LinkAURL,
		LinkBURL:           q.LinkBURL,
		LinkACode:          q.LinkACode,
		LinkBCode:          q.LinkBCode,
		IsTrap:             q.IsTrap,
		TrapExpectedWinner: q.TrapExpectedWinner,
		OrderIndex:         q.OrderIndex,
	}); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}

// Export godoc
// @Summary 导出问卷结果 CSV
// @Description format 取 long 或 wide
// @Tags 问卷管理
// @Produce  text/csv
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Param   format query string false "导出格式"
// @Success 200 {file} file
// @Failure 404 {object} util.Response
// @Router /api/admin/questionnaires/{id}/export [get]
func (c *QuestionnaireController) Export(ctx *gin.Context) {
	result, err := c.ExportService.ExportCSV(util.MustParseUint(ctx.Param("id")), ctx.Query("format"))
	if err != nil {
		if errors.Is(err, util.ErrQuestionnaireNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	ctx.Header("Content-Disposition", "attachment; filename="+result.Filename)
	ctx.Data(http.StatusOK, result.ContentType, result.Data)
}

// ListForAnnotator godoc
// @Summary 标注端可见的问卷列表
// @Tags 标注
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.AnnotatorQuestionnaire}
// @Router /api/questionnaires [get]
func (c *QuestionnaireController) ListForAnnotator(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	list, err := c.QuestionnaireService.ListForAnnotator(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// QuestionsForAnnotator godoc
// @Summary 某问卷的题目列表（标注端视角，不含校验码与陷阱配置）
// @Tags 标注
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response{data=[]service.AnnotatorQuestion}
// @Failure 404 {object} util.Response
// @Router /api/questionnaires/{id}/questions [get]
func (c *QuestionnaireController) QuestionsForAnnotator(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	list, err := c.QuestionnaireService.QuestionsForAnnotator(claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrQuestionnaireNotFound) {
			util.NotFound(ctx)
		} else if errors.Is(err, util.ErrQuestionnaireNotActive) {
			util.Forbidden(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, list)
}
