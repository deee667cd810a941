package domain

import "time"

// SystemActor is recorded as the performer when no session exists.
const SystemActor = "System"

// Log is a single audit entry. Entries are never modified once written.
type Log struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Action      string    `json:"action"`
	Details     string    `json:"details"`
	PerformedBy string    `json:"performedBy"`
}

// Audit actions.
const (
	ActionLogin                = "Login"
	ActionLoginFailed          = "Login Failed"
	ActionSecurityUpgrade      = "Security Upgrade"
	ActionLogout               = "Logout"
	ActionUserCreated          = "User Created"
	ActionUserUpdated          = "User Updated"
	ActionUserDeleted          = "User Deleted"
	ActionRoleUpdated          = "Role Updated"
	ActionPasswordChanged      = "Password Changed"
	ActionProjectCreated       = "Project Created"
	ActionProjectUpdated       = "Project Updated"
	ActionProjectAccessUpdated = "Project Access Updated"
	ActionTaskCreated          = "Task Created"
	ActionTaskUpdated          = "Task Updated"
	ActionTaskDeleted          = "Task Deleted"
	ActionCommentAdded         = "Comment Added"
	ActionReportCreated        = "Report Created"
	ActionReportDeleted        = "Report Deleted"
	ActionReportExported       = "Report Exported"
	ActionNewsPosted           = "News Posted"
	ActionNewsDeleted          = "News Deleted"
	ActionAI                   = "AI Action"
)
