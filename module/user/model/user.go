package model

import "time"

// 市场角色
const (
	RoleUser   = "user"
	RoleAdmin  = "admin"
	RoleDealer = "dealer"

	UserTableName = "users"
)

func StaffRole(role string) bool {
	return role == RoleAdmin || role == RoleDealer
}

// User 用户主档中继所需的切片：展示资料 + 在线状态快照。
// IsOnline/LastSeenAt 由网关在连接生命周期上写入，允许短暂滞后。
type User struct {
	UserID     string     `bson:"user_id" json:"userId"`
	Nickname   string     `bson:"nickname" json:"nickname"`
	FaceURL    string     `bson:"face_url" json:"faceUrl"`
	Role       string     `bson:"role" json:"role"`
	IsOnline   bool       `bson:"is_online" json:"isOnline"`
	LastSeenAt *time.Time `bson:"last_seen_at,omitempty" json:"lastSeenAt,omitempty"`
	CreateTime time.Time  `bson:"create_time" json:"-"`
	UpdateTime time.Time  `bson:"update_time" json:"-"`
}
