package wsexecutor

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/procon-tools/go-procon/client/localclient"
	"github.com/procon-tools/go-procon/cmd/procon-judge/model"
	"github.com/procon-tools/go-procon/language"
	"github.com/procon-tools/go-procon/problem"
	"github.com/procon-tools/go-procon/types"
	"go.uber.org/zap"
)

// Register registers web socket handle /ws
type Register interface {
	Register(*gin.Engine)
}

// New creates new websocket handle, requests are submitted to the client
// and progress is streamed back as they arrive
func New(client *localclient.Client, langs language.Language, srcPrefix []string, logger *zap.Logger) Register {
	return &wsHandle{
		client:    client,
		langs:     langs,
		srcPrefix: srcPrefix,
		logger:    logger,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

type wsHandle struct {
	client    *localclient.Client
	langs     language.Language
	srcPrefix []string
	logger    *zap.Logger
}

func (h *wsHandle) Register(r *gin.Engine) {
	r.GET("/ws", h.handleWS)
}

func (h *wsHandle) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	resultCh := make(chan model.Progress, 128)
	send := func(p model.Progress) {
		select {
		case resultCh <- p:
		case <-ctx.Done():
		}
	}

	// read request
	go func() {
		defer conn.Close()
		defer cancel()
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		for {
			req := new(model.Request)
			if err := conn.ReadJSON(req); err != nil {
				h.logger.Sugar().Warn("ws read error:", err)
				return
			}
			p, err := model.ConvertRequest(req, h.langs, h.srcPrefix)
			if err != nil {
				h.logger.Sugar().Warn("convert error: ", err)
				send(model.Progress{Type: model.ProgressFinished, Error: err.Error()})
				continue
			}
			go h.submit(ctx, p, send)
		}
	}()

	// write result
	go func() {
		defer conn.Close()
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case r := <-resultCh:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(r); err != nil {
					h.logger.Sugar().Warn("ws write error:", err)
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (h *wsHandle) submit(ctx context.Context, p types.ProblemTask, send func(model.Progress)) {
	id := uuid.NewString()
	task, err := h.client.SubmitWithID(ctx, id, p, localclient.Handler{
		Parsed: func(c *problem.Config) {
			ids := make([]string, 0, len(c.Cases))
			for _, tc := range c.Cases {
				ids = append(ids, tc.ID)
			}
			send(model.Progress{Type: model.ProgressParsed, RequestID: id, Cases: ids})
		},
		Compiled: func(c *types.ProgressCompiled) {
			ok := c.Status == types.ProgressSucceeded
			send(model.Progress{Type: model.ProgressCompiled, RequestID: id, Succeeded: &ok, Message: c.Message})
		},
		Progressed: func(c *types.ProgressProgressed) {
			tc := model.ConvertCase(&c.TestCaseResult)
			send(model.Progress{Type: model.ProgressProgressed, RequestID: id, Index: c.TestCaseIndex, Case: &tc})
		},
	})
	if err != nil {
		return
	}
	rt, err := task.Wait(ctx)
	if err != nil {
		return
	}
	res := model.ConvertResult(rt)
	send(model.Progress{Type: model.ProgressFinished, RequestID: id, Result: &res})
}
