package client

import "time"

// Profile 镜像服务端的用户档案记录，客户端只读。
type Profile struct {
	ID        string    `json:"id"`
	Username  *string   `json:"username"`
	Email     *string   `json:"email"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SavedDocument 镜像服务端的私有草稿记录。
type SavedDocument struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     *string   `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublishedDocument 镜像服务端的公开文档记录。
// LikesCount 是客户端缓存的计数，乐观更新后可能漂移，重新拉取即校准。
type PublishedDocument struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Keywords   []string  `json:"keywords"`
	LikesCount int       `json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
