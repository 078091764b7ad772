package user

import "time"

type Role string

const (
	RoleAdmin      Role = "Admin" // Manages attendance for everyone
	RoleDeveloper  Role = "Developer"
	RoleTester     Role = "Tester"
	RoleSEO        Role = "SEO"
	RoleHR         Role = "HR"
	RoleAccountant Role = "Accountant"
	RoleStudent    Role = "Student"
	RoleStaff      Role = "Staff"
	RoleIntern     Role = "Intern"
)

type User struct {
	ID                       string
	FullName                 string
	Email                    string
	Role                     Role
	IsActive                 bool
	IsBlocked                bool
	FailedAttendanceAttempts int
	CreatedAt                time.Time
	UpdatedAt                time.Time
}
