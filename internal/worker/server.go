// Package worker 運行 asynq 背景任務：客戶端離開時的清理只是盡力而為，
// 這裡定期清掃過期的在線記錄作為伺服器端的後備手段。
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"brainstorm_web/internal/service"
	"brainstorm_web/internal/tasks"
	"brainstorm_web/pkg/presence"
)

// WorkerServer 封裝了 asynq Server 與 Scheduler 的啟動和關閉邏輯
type WorkerServer struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	log       *logrus.Entry

	participantService *service.ParticipantService
}

// NewWorkerServer 創建一個新的 WorkerServer 實例
func NewWorkerServer(redisOpt asynq.RedisClientOpt, participantService *service.ParticipantService, logger *logrus.Logger) *WorkerServer {
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 4,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	scheduler := asynq.NewScheduler(redisOpt, nil)

	return &WorkerServer{
		server:             server,
		scheduler:          scheduler,
		log:                logEntry,
		participantService: participantService,
	}
}

// Start 運行 Worker Server 與排程器
// 它應該在單獨的 goroutine 中調用
func (ws *WorkerServer) Start() {
	mux := asynq.NewServeMux()

	// 註冊任務處理器
	sweepHandler := NewParticipantSweepHandler(ws.participantService)
	mux.HandleFunc(tasks.TypeParticipantSweep, sweepHandler.ProcessTask)

	// 依照過期政策的清掃間隔排程
	sweepTask, err := tasks.NewParticipantSweepTask(presence.DefaultPolicy.EvictAfter)
	if err != nil {
		ws.log.Fatalf("Could not build sweep task: %v", err)
	}
	cronspec := fmt.Sprintf("@every %s", presence.DefaultPolicy.SweepEvery)
	if _, err := ws.scheduler.Register(cronspec, sweepTask); err != nil {
		ws.log.Fatalf("Could not register sweep schedule: %v", err)
	}

	go func() {
		if err := ws.scheduler.Run(); err != nil {
			ws.log.Fatalf("Could not run scheduler: %v", err)
		}
	}()

	ws.log.Info("Worker server starting...")
	if err := ws.server.Run(mux); err != nil {
		if !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Fatalf("Could not run worker server: %v", err)
		}
		ws.log.Info("Worker server closed")
	}
}

// Shutdown 停止排程器與 Worker
func (ws *WorkerServer) Shutdown() {
	ws.scheduler.Shutdown()
	ws.server.Shutdown()
}
