package models

import "time"

// Moderator roles within a community.
const (
	RoleOwner     = "owner"
	RoleModerator = "moderator"
)

// CommunityModerator pairs an identity with its role.
type CommunityModerator struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
}

// ModeratorList is stored as a JSON array column.
type ModeratorList []CommunityModerator

// Has reports whether identity appears in the list.
func (l ModeratorList) Has(identity string) bool {
	for _, m := range l {
		if m.Identity == identity {
			return true
		}
	}
	return false
}

// Community is a lightweight grouping of members. MemberCount must equal
// |Members| after every successful join/leave; the repository maintains both
// in one transaction.
type Community struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	Name        string        `gorm:"not null;uniqueIndex" json:"name"`
	Members     IdentitySet   `gorm:"type:text" json:"members"`
	Moderators  ModeratorList `gorm:"serializer:json;type:text" json:"moderators"`
	MemberCount int           `gorm:"not null;default:0" json:"member_count"`
	CreatedAt   time.Time     `json:"created_at"`
}
