package authz

import (
	"strings"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// Capability names one gated operation. Every role check in the service
// layer goes through the single table below rather than ad hoc role lists.
type Capability string

const (
	CapVideoCreate  Capability = "video:create"
	CapVideoSubmit  Capability = "video:submit"
	CapVideoAudit   Capability = "video:audit"
	CapVideoOffline Capability = "video:offline"

	CapLiveCreate  Capability = "live:create"
	CapLiveSubmit  Capability = "live:submit"
	CapLiveAudit   Capability = "live:audit"
	CapLivePublish Capability = "live:publish"
	CapLiveStart   Capability = "live:start"
	CapLiveFinish  Capability = "live:finish"
	CapLiveOffline Capability = "live:offline"

	CapCommentPost Capability = "comment:post"
	CapChatPost    Capability = "chat:post"

	CapPolicyManage Capability = "policy:manage"
	CapWordManage   Capability = "word:manage"
	CapAuditRead    Capability = "audit:read"
	CapCollegeAdmin Capability = "college:manage"
)

// Principal is the authenticated actor as supplied by the auth layer. The
// engines trust it as already verified. ClientIP rides along for the audit
// trail only.
type Principal struct {
	UserID   uint
	Role     string
	ClientIP string
}

// permissions is the full role → capability table. Live audit deliberately
// excludes the platform admin: only college admins may pass or reject a
// live room.
var permissions = map[string]map[Capability]struct{}{
	models.RoleChild: capSet(
		CapCommentPost, CapChatPost,
	),
	models.RoleVolunteer: capSet(
		CapVideoCreate, CapVideoSubmit, CapVideoOffline,
		CapLiveCreate, CapLiveSubmit, CapLivePublish, CapLiveStart, CapLiveFinish, CapLiveOffline,
		CapCommentPost, CapChatPost,
	),
	models.RoleCollegeAdmin: capSet(
		CapVideoAudit, CapVideoOffline,
		CapLiveAudit, CapLiveOffline,
		CapAuditRead,
	),
	models.RolePlatformAdmin: capSet(
		CapVideoAudit, CapVideoOffline,
		CapLiveOffline,
		CapPolicyManage, CapWordManage, CapAuditRead, CapCollegeAdmin,
	),
}

func capSet(caps ...Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// Can reports whether the role holds the capability.
func Can(role string, capability Capability) bool {
	set, ok := permissions[normalizeRole(role)]
	if !ok {
		return false
	}
	_, ok = set[capability]
	return ok
}

// IsAdmin reports whether the role carries any administrative scope.
func IsAdmin(role string) bool {
	r := normalizeRole(role)
	return r == models.RoleCollegeAdmin || r == models.RolePlatformAdmin
}

func normalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}
