package models

import (
	"time"

	"gorm.io/gorm"
)

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// DefaultMonsterType is assigned on registration.
const DefaultMonsterType = "blob"

// MonsterTypes is the closed set of cosmetic monster tags.
var MonsterTypes = []string{"blob", "dragon", "golem", "slime", "phoenix"}

// User is a player: credentials, XP balance, derived level and the social graph.
// Friends and FriendRequests are stored as embedded jsonb documents.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash; legacy rows may still hold plaintext

	// Progression
	PlatformXP  int64    `gorm:"not null;default:0" json:"platform_xp"`
	Level       int      `gorm:"not null;default:1" json:"level"`
	MonsterType string   `gorm:"type:varchar(32);not null" json:"monster_type"`
	HellWeek    HellWeek `gorm:"embedded;embeddedPrefix:hell_week_" json:"hell_week"`

	// Social
	FriendCode     *string         `gorm:"type:varchar(5);uniqueIndex" json:"friend_code,omitempty"` // nil until backfilled
	Friends        []string        `gorm:"serializer:json;type:jsonb" json:"friends"`
	FriendRequests []FriendRequest `gorm:"serializer:json;type:jsonb" json:"friend_requests"`

	Timestamps
}

// HellWeek is the timed self-challenge sub-state of a user.
type HellWeek struct {
	IsActive   bool       `gorm:"not null" json:"is_active"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	TargetDate *time.Time `json:"target_date,omitempty"`
}

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest sits in the *target's* queue; From is the sender's user ID.
type FriendRequest struct {
	From      string              `json:"from"`
	Status    FriendRequestStatus `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
}

func (u *User) IsFriendsWith(userID string) bool {
	for _, id := range u.Friends {
		if id == userID {
			return true
		}
	}
	return false
}

// AddFriend adds an edge on this side only. Reports false when it was already present.
func (u *User) AddFriend(userID string) bool {
	if u.IsFriendsWith(userID) {
		return false
	}
	u.Friends = append(u.Friends, userID)
	return true
}

func (u *User) HasPendingRequestFrom(userID string) bool {
	for _, r := range u.FriendRequests {
		if r.From == userID && r.Status == FriendRequestPending {
			return true
		}
	}
	return false
}

// RemoveRequestsFrom drops every queued request sent by userID and returns how many were removed.
func (u *User) RemoveRequestsFrom(userID string) int {
	kept := u.FriendRequests[:0]
	removed := 0
	for _, r := range u.FriendRequests {
		if r.From == userID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	u.FriendRequests = kept
	return removed
}

func IsMonsterType(t string) bool {
	for _, m := range MonsterTypes {
		if m == t {
			return true
		}
	}
	return false
}
