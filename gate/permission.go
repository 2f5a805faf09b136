package gate

import "strings"

// Action is the verb half of a permission.
type Action string

const (
	ActionView   Action = "view"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionReview approves or declines an agreement.
	ActionReview Action = "review"
	// ActionSign records a countersigned agreement.
	ActionSign Action = "sign"
)

// Wildcard matches any resource or any action.
const Wildcard = "*"

// Permission is a "resource:action" pair such as "quote:create".
type Permission string

// PermissionSuperAdmin grants everything.
const PermissionSuperAdmin Permission = "*:*"

func NewPermission(resource string, action Action) Permission {
	return Permission(resource + ":" + string(action))
}

// Split returns the resource and action halves. Malformed values yield empty strings.
func (p Permission) Split() (string, Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok || res == "" || act == "" {
		return "", ""
	}
	return res, Action(act)
}

// Matches reports whether a granted permission p covers requested.
// Either half of p may be "*": "quote:*" covers every quote action and
// "*:view" covers viewing any resource.
func (p Permission) Matches(requested Permission) bool {
	if p == requested {
		return true
	}
	gotRes, gotAct := p.Split()
	reqRes, reqAct := requested.Split()
	if gotRes == "" || reqRes == "" {
		return false
	}
	resOK := gotRes == Wildcard || gotRes == reqRes
	actOK := string(gotAct) == Wildcard || gotAct == reqAct
	return resOK && actOK
}
