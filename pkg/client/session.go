package client

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// SessionState 表示登录流程所处的阶段。
type SessionState int

const (
	// StateAnonymous 未登录
	StateAnonymous SessionState = iota
	// StateCodeRequested 已发送验证码，等待校验
	StateCodeRequested
	// StateAuthenticated 已登录
	StateAuthenticated
)

// String 实现 fmt.Stringer
func (s SessionState) String() string {
	switch s {
	case StateCodeRequested:
		return "code_requested"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// SessionSnapshot 是会话状态在某一时刻的只读快照。
type SessionSnapshot struct {
	State   SessionState
	Email   string
	UserID  string
	Profile *Profile
}

// SessionManager 维护三态登录状态机并对外提供订阅。
// 它是显式构造、显式传递的对象，进程内没有环境全局量。
type SessionManager struct {
	http     *resty.Client
	notifier Notifier

	mu          sync.Mutex
	snapshot    SessionSnapshot
	nextSubID   int
	subscribers map[int]func(SessionSnapshot)
}

type verifyEnvelope struct {
	Profile *Profile `json:"profile"`
}

type sessionEnvelope struct {
	Authenticated bool     `json:"authenticated"`
	UserID        string   `json:"user_id"`
	Profile       *Profile `json:"profile"`
}

func newSessionManager(httpClient *resty.Client, notifier Notifier) *SessionManager {
	return &SessionManager{
		http:        httpClient,
		notifier:    notifier,
		subscribers: map[int]func(SessionSnapshot){},
	}
}

// Snapshot 返回当前会话快照。
func (m *SessionManager) Snapshot() SessionSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// State 返回当前状态。
func (m *SessionManager) State() SessionState {
	return m.Snapshot().State
}

// Authenticated 报告是否处于已登录状态。
func (m *SessionManager) Authenticated() bool {
	return m.State() == StateAuthenticated
}

// UserID 返回已登录用户 id，未登录为空串。
func (m *SessionManager) UserID() string {
	return m.Snapshot().UserID
}

// Profile 返回当前档案，未登录为 nil。
func (m *SessionManager) Profile() *Profile {
	return m.Snapshot().Profile
}

// OnChange 注册会话变更回调，返回注销函数。
func (m *SessionManager) OnChange(fn func(SessionSnapshot)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// RequestCode 请求给邮箱发送登录验证码。
// 成功进入 code_requested，失败保持 anonymous 并浮出错误。
func (m *SessionManager) RequestCode(email string) bool {
	var apiErr errorEnvelope
	resp, err := m.http.R().
		SetBody(map[string]string{"email": email}).
		SetError(&apiErr).
		Post("/api/auth/otp")
	if err != nil {
		m.notifier.Notify(Notification{Title: "Error", Description: err.Error(), IsError: true})
		return false
	}
	if resp.IsError() {
		m.notifier.Notify(Notification{
			Title:       "Error",
			Description: remoteMessage(apiErr, "Failed to send OTP"),
			IsError:     true,
		})
		return false
	}

	m.transition(func(s *SessionSnapshot) {
		s.State = StateCodeRequested
		s.Email = email
	})
	m.notifier.Notify(Notification{Title: "OTP sent!", Description: "Check your email for the verification code"})
	return true
}

// VerifyCode 用验证码完成登录。
// 成功进入 authenticated 并拉取档案，失败停留在 code_requested。
func (m *SessionManager) VerifyCode(email, code string) bool {
	var env verifyEnvelope
	var apiErr errorEnvelope
	resp, err := m.http.R().
		SetBody(map[string]string{"email": email, "code": code}).
		SetResult(&env).
		SetError(&apiErr).
		Post("/api/auth/verify")
	if err != nil {
		m.notifier.Notify(Notification{Title: "Error", Description: err.Error(), IsError: true})
		return false
	}
	if resp.IsError() {
		m.notifier.Notify(Notification{
			Title:       "Error",
			Description: remoteMessage(apiErr, "Invalid or expired OTP"),
			IsError:     true,
		})
		return false
	}

	m.transition(func(s *SessionSnapshot) {
		s.State = StateAuthenticated
		s.Email = email
		if env.Profile != nil {
			s.UserID = env.Profile.ID
		}
		s.Profile = env.Profile
	})
	m.notifier.Notify(Notification{Title: "Success!", Description: "You have been signed in successfully"})
	return true
}

// SignOut 显式登出并回到 anonymous。
func (m *SessionManager) SignOut() {
	var apiErr errorEnvelope
	resp, err := m.http.R().SetError(&apiErr).Post("/api/auth/logout")
	if err != nil || resp.IsError() {
		// 远端登出失败也清空本地状态，会话已不可信
		m.notifier.Notify(Notification{Title: "Error", Description: "Failed to sign out", IsError: true})
	} else {
		m.notifier.Notify(Notification{Title: "Signed out", Description: "You have been signed out successfully"})
	}

	m.transition(func(s *SessionSnapshot) {
		*s = SessionSnapshot{}
	})
}

// Watch 启动外部会话推送通道：周期性向服务端核对会话，
// 用户 id 变化时重新派生档案，会话消失时清空。
// 进程启动时建立一次，ctx 取消即拆除。
func (m *SessionManager) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Refresh()
			}
		}
	}()
}

// Refresh 与服务端核对一次会话状态。
func (m *SessionManager) Refresh() {
	var env sessionEnvelope
	resp, err := m.http.R().SetResult(&env).Get("/api/auth/session")
	if err != nil || resp.IsError() {
		// 核对失败不改变本地状态，下个周期再试
		return
	}

	if !env.Authenticated {
		if m.Authenticated() {
			m.transition(func(s *SessionSnapshot) {
				*s = SessionSnapshot{}
			})
		}
		return
	}

	current := m.Snapshot()
	if current.State == StateAuthenticated && current.UserID == env.UserID {
		return
	}

	m.transition(func(s *SessionSnapshot) {
		s.State = StateAuthenticated
		s.UserID = env.UserID
		s.Profile = env.Profile
		if env.Profile != nil && env.Profile.Email != nil {
			s.Email = *env.Profile.Email
		}
	})
}

// transition 在锁内更新快照，并在锁外回调订阅者。
func (m *SessionManager) transition(mutate func(*SessionSnapshot)) {
	m.mu.Lock()
	mutate(&m.snapshot)
	snapshot := m.snapshot
	callbacks := make([]func(SessionSnapshot), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		callbacks = append(callbacks, fn)
	}
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(snapshot)
	}
}
