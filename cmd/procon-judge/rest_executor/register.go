package restexecutor

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/procon-tools/go-procon/types"
)

// Register registers executor the handler
type Register interface {
	Register(*gin.Engine)
}

// Judger runs problem and custom tasks
type Judger interface {
	RunProblem(context.Context, types.ProblemTask) *types.JudgeResult
	RunCustom(context.Context, types.CustomTask) *types.CustomResult
}
