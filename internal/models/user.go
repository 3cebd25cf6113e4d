package models

import "time"

// Role values assigned to platform accounts.
const (
	RoleChild         = "CHILD"
	RoleVolunteer     = "VOLUNTEER"
	RoleCollegeAdmin  = "COLLEGE_ADMIN"
	RolePlatformAdmin = "PLATFORM_ADMIN"
)

// Account status values.
const (
	UserStatusActive    = "ACTIVE"
	UserStatusInactive  = "INACTIVE"
	UserStatusSuspended = "SUSPENDED"
)

// Volunteer enrolment status values.
const (
	VolunteerInSchool  = "IN_SCHOOL"
	VolunteerGraduated = "GRADUATED"
	VolunteerSuspended = "SUSPENDED"
)

// User is a platform account. Accounts are never hard-deleted; admins flip
// the status instead.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:32;not null;index" json:"role"`
	Status       string    `gorm:"size:32;not null;default:ACTIVE" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VolunteerProfile binds a volunteer account to a college. The college
// determines the scope of every piece of content the volunteer creates.
type VolunteerProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	RealName  string    `gorm:"size:64;not null" json:"real_name"`
	StudentNo string    `gorm:"size:32" json:"student_no"`
	CollegeID uint      `gorm:"index;not null" json:"college_id"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Status    string    `gorm:"size:32;not null;default:IN_SCHOOL" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminProfile binds an admin account to its scope. A nil CollegeID means
// platform-wide authority; a set CollegeID confines the admin to one college.
type AdminProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	RealName  string    `gorm:"size:64;not null" json:"real_name"`
	CollegeID *uint     `gorm:"index" json:"college_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChildProfile describes a child account attending sessions.
type ChildProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Nickname  string    `gorm:"size:64" json:"nickname"`
	GradeName string    `gorm:"size:32" json:"grade_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
