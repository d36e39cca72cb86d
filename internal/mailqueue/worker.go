package mailqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/hibiken/asynq"

	"github.com/redmonkez12/authflow/internal/logging"
)

// Worker consumes the mail queue and hands each task to a Sender
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sender Sender
	logger *logging.Logger
}

func NewWorker(opt asynq.RedisConnOpt, concurrency int, sender Sender, logger *logging.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queueName: 1},
		Logger:      asynqLogger{logger},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		sender: sender,
		logger: logger,
	}
	w.mux.HandleFunc(TypeVerification, w.ProcessTask)
	w.mux.HandleFunc(TypeWelcome, w.ProcessTask)
	w.mux.HandleFunc(TypePasswordReset, w.ProcessTask)
	w.mux.HandleFunc(TypeResetSuccess, w.ProcessTask)

	return w
}

// Start runs the asynq server in the background
func (w *Worker) Start() {
	go func() {
		if err := w.server.Run(w.mux); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
			w.logger.Error("mail worker stopped", "error", err)
		}
	}()
}

// Shutdown waits for in-flight deliveries and stops the server
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

// ProcessTask delivers one mail task. Malformed payloads are not retried.
func (w *Worker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var p Payload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	if p.To == "" {
		return fmt.Errorf("%s payload missing recipient: %w", task.Type(), asynq.SkipRetry)
	}

	ctx = logging.WithLogger(ctx, w.logger.WithFields(map[string]any{"task_type": task.Type()}))

	switch task.Type() {
	case TypeVerification:
		return w.sender.SendVerificationEmail(ctx, p.To, p.Code)
	case TypeWelcome:
		return w.sender.SendWelcomeEmail(ctx, p.To, p.Name)
	case TypePasswordReset:
		return w.sender.SendPasswordResetEmail(ctx, p.To, p.Token)
	case TypeResetSuccess:
		return w.sender.SendResetSuccessEmail(ctx, p.To)
	default:
		return fmt.Errorf("unknown mail task %q: %w", task.Type(), asynq.SkipRetry)
	}
}

// asynqLogger routes asynq's internal logging through slog
type asynqLogger struct {
	logger *logging.Logger
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug(fmt.Sprint(args...), "component", "asynq") }
func (l asynqLogger) Info(args ...any) { l.logger.Info(fmt.Sprint(args...), "component", "asynq") }
func (l asynqLogger) Warn(args ...any) { l.logger.Warn(fmt.Sprint(args...), "component", "asynq") }
func (l asynqLogger) Error(args ...any) { l.logger.Error(fmt.Sprint(args...), "component", "asynq") }

func (l asynqLogger) Fatal(args ...any) {
	l.logger.Error(fmt.Sprint(args...), "component", "asynq")
	os.Exit(1)
}
