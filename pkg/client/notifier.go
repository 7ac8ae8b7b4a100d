package client

import "github.com/sirupsen/logrus"

// Notification 是一条面向用户的操作结果通知。
// 远端失败永远以通知形式浮出，不会作为异常穿过 UI 边界。
type Notification struct {
	Title       string
	Description string
	IsError     bool
}

// Notifier 接收操作结果通知。
type Notifier interface {
	Notify(Notification)
}

// NotifyFunc 让普通函数充当 Notifier。
type NotifyFunc func(Notification)

// Notify 实现 Notifier
func (f NotifyFunc) Notify(n Notification) {
	f(n)
}

// LogNotifier 把通知写入日志，适合无 UI 的场景。
type LogNotifier struct{}

// Notify 实现 Notifier
func (LogNotifier) Notify(n Notification) {
	entry := logrus.WithField("description", n.Description)
	if n.IsError {
		entry.Warn(n.Title)
		return
	}
	entry.Info(n.Title)
}
