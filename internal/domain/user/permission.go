package user

type Permission string

const (
	// Attendance
	PermissionAttendancePunch   Permission = "attendance.punch"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceManage  Permission = "attendance.manage"
)

var operationalPermissions = []Permission{
	PermissionAttendancePunch,
	PermissionAttendanceViewOwn,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		// Admin overrides attendance but does not punch
		PermissionAttendanceViewOwn,
		PermissionAttendanceManage,
	},
	RoleDeveloper:  operationalPermissions,
	RoleTester:     operationalPermissions,
	RoleSEO:        operationalPermissions,
	RoleHR:         operationalPermissions,
	RoleAccountant: operationalPermissions,
	RoleStudent:    operationalPermissions,
	RoleStaff:      operationalPermissions,
	RoleIntern:     operationalPermissions,
	// Tokens issued before roles existed carry none
	"": operationalPermissions,
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
