package restexecutor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/procon-tools/go-procon/cmd/procon-judge/model"
	"github.com/procon-tools/go-procon/language"
	"go.uber.org/zap"
)

type runHandle struct {
	judger    Judger
	langs     language.Language
	srcPrefix []string
	logger    *zap.Logger
}

// NewRunHandle creates a new run handle
func NewRunHandle(judger Judger, langs language.Language, srcPrefix []string, logger *zap.Logger) Register {
	return &runHandle{
		judger:    judger,
		langs:     langs,
		srcPrefix: srcPrefix,
		logger:    logger,
	}
}

func (h *runHandle) Register(r *gin.Engine) {
	r.POST("/run", h.handleRun)
	r.POST("/custom", h.handleCustom)
	r.GET("/languages", h.handleLanguages)
}

func (h *runHandle) handleRun(ctx *gin.Context) {
	var req model.Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return
	}
	p, err := model.ConvertRequest(&req, h.langs, h.srcPrefix)
	if err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Sugar().Debugf("request: %+v", p)
	rt := h.judger.RunProblem(ctx.Request.Context(), p)
	h.logger.Sugar().Debugf("response: %v", rt.Status)
	ctx.JSON(http.StatusOK, model.ConvertResult(rt))
}

func (h *runHandle) handleCustom(ctx *gin.Context) {
	var req model.CustomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return
	}
	p, err := model.ConvertCustomRequest(&req, h.langs, h.srcPrefix)
	if err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return
	}
	rt := h.judger.RunCustom(ctx.Request.Context(), p)
	ctx.JSON(http.StatusOK, model.ConvertCustomResult(rt))
}

func (h *runHandle) handleLanguages(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.langs.Names())
}
