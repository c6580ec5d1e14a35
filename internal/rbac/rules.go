package rbac

// Permissions checked by the sheet routes.
const (
	PermSheetCompose = "sheet:compose"
	PermSheetExport  = "sheet:export"
	PermSheetView    = "sheet:view"
	PermExportsList  = "exports:list"

	// PermSessionsAny reaches sessions owned by other subjects.
	PermSessionsAny = "sessions:any"
)

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleViewer  = "viewer"
)

// RolePermissions is the default policy. A trailing * matches a prefix.
var RolePermissions = map[string][]string{
	RoleViewer: {
		PermSheetView,
	},
	RoleTeacher: {
		"sheet:*",
		PermExportsList,
	},
	RoleAdmin: {
		"*",
	},
}
