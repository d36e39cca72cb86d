package auth

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/authflow/internal/account"
	"github.com/redmonkez12/authflow/internal/database/dbtest"
	"github.com/redmonkez12/authflow/internal/logging"
)

// fakeMailer records the last message of each kind
type fakeMailer struct {
	mu           sync.Mutex
	err          error
	codes        map[string]string
	resetTokens  map[string]string
	welcomed     []string
	resetSuccess []string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: map[string]string{}, resetTokens: map[string]string{}}
}

func (m *fakeMailer) SendVerificationEmail(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return m.err
}

func (m *fakeMailer) SendWelcomeEmail(_ context.Context, to, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomed = append(m.welcomed, to)
	return m.err
}

func (m *fakeMailer) SendPasswordResetEmail(_ context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetTokens[to] = token
	return m.err
}

func (m *fakeMailer) SendResetSuccessEmail(_ context.Context, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetSuccess = append(m.resetSuccess, to)
	return m.err
}

func (m *fakeMailer) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

func (m *fakeMailer) resetToken(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resetTokens[to]
}

type testEnv struct {
	service  *Service
	accounts *account.Repository
	sessions *RedisSessionStore
	mailer   *fakeMailer
	redis    *miniredis.Miniredis
	logs     *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens, err := NewPasetoService(testKey)
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	accounts := account.NewRepository(dbtest.NewSQLite(t))
	sessions := NewRedisSessionStore(client)
	mailer := newFakeMailer()

	return &testEnv{
		service:  NewService(accounts, sessions, tokens, mailer, logging.New(logs, true), 24*time.Hour),
		accounts: accounts,
		sessions: sessions,
		mailer:   mailer,
		redis:    mr,
		logs:     logs,
	}
}

// signup creates an account and returns its session token
func (e *testEnv) signup(t *testing.T, email, name, password string) (*account.Account, string) {
	t.Helper()
	acc, session, err := e.service.Signup(context.Background(), email, name, password)
	require.NoError(t, err)
	return acc, session.Token
}
