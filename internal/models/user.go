package models

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// Principal is the authenticated caller as resolved by the identity provider.
type Principal struct {
	ID       string   `json:"id"`
	Role     UserRole `json:"role"`
	ClassID  *uint    `json:"class_id,omitempty"`
	SchoolID string   `json:"school_id"`
}

func (p *Principal) IsTeacher() bool {
	return p != nil && (p.Role == RoleTeacher || p.Role == RoleAdmin)
}

func (p *Principal) IsStudent() bool {
	return p != nil && p.Role == RoleStudent
}

// InClass reports whether the principal is enrolled in the given class.
func (p *Principal) InClass(classID uint) bool {
	return p != nil && p.ClassID != nil && *p.ClassID == classID
}
