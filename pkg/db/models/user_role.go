package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/b4platform/b4-backend/pkg/enums"
)

// UserRole grants a platform role to a user. The (user_id, role) pair is
// unique; approving the same role application twice is a no-op.
type UserRole struct {
	ID        uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_user_roles_user_role"`
	Role      enums.PlatformRole `gorm:"column:role;type:platform_role;not null;uniqueIndex:idx_user_roles_user_role"`
	GrantedBy *uuid.UUID         `gorm:"column:granted_by;type:uuid"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}
