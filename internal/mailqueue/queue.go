// Package mailqueue delivers account emails asynchronously through an asynq queue.
package mailqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/redmonkez12/authflow/internal/logging"
)

// Task types, one per email kind
const (
	TypeVerification  = "email:verification"
	TypeWelcome       = "email:welcome"
	TypePasswordReset = "email:password_reset"
	TypeResetSuccess  = "email:reset_success"
)

const (
	queueName  = "mail"
	maxRetries = 3
)

// Payload is the JSON body of every mail task
type Payload struct {
	To    string `json:"to"`
	Code  string `json:"code,omitempty"`
	Name  string `json:"name,omitempty"`
	Token string `json:"token,omitempty"`
}

// Sender performs the actual delivery; *email.Service implements it
type Sender interface {
	SendVerificationEmail(ctx context.Context, toEmail, code string) error
	SendWelcomeEmail(ctx context.Context, toEmail, name string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
	SendResetSuccessEmail(ctx context.Context, toEmail string) error
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Dispatcher enqueues mail tasks in place of sending them inline
type Dispatcher struct {
	client enqueuer
}

func NewDispatcher(opt asynq.RedisConnOpt) *Dispatcher {
	return &Dispatcher{client: asynq.NewClient(opt)}
}

func (d *Dispatcher) SendVerificationEmail(ctx context.Context, toEmail, code string) error {
	return d.enqueue(ctx, TypeVerification, Payload{To: toEmail, Code: code})
}

func (d *Dispatcher) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	return d.enqueue(ctx, TypeWelcome, Payload{To: toEmail, Name: name})
}

func (d *Dispatcher) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	return d.enqueue(ctx, TypePasswordReset, Payload{To: toEmail, Token: token})
}

func (d *Dispatcher) SendResetSuccessEmail(ctx context.Context, toEmail string) error {
	return d.enqueue(ctx, TypeResetSuccess, Payload{To: toEmail})
}

func (d *Dispatcher) Close() error {
	return d.client.Close()
}

func (d *Dispatcher) enqueue(ctx context.Context, taskType string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}

	task := asynq.NewTask(taskType, body, asynq.Queue(queueName))
	info, err := d.client.EnqueueContext(ctx, task, asynq.MaxRetry(maxRetries))
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}

	logging.GetLoggerFromContext(ctx).Debug("mail task enqueued", "type", taskType, "task_id", info.ID)
	return nil
}
