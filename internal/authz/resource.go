package authz

// Action is an operation requested on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionAssign Action = "assign"
)

// Kind identifies the resource type an action targets.
type Kind string

const (
	KindProject     Kind = "project"
	KindContributor Kind = "contributor"
	KindIssue       Kind = "issue"
	KindComment     Kind = "comment"
	KindUser        Kind = "user"
)

// Role is a member's role within a project.
type Role string

const (
	RoleAuthor      Role = "AUTHOR"
	RoleContributor Role = "CONTRIBUTOR"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAuthor || r == RoleContributor
}

// Resource is implemented by every entity the resolver can judge.
//
// BelongsToProject returns the id of the owning project; ok is false when the
// project cannot be resolved, for example because a parent was deleted.
// OwnerID returns the user that owns the resource itself: the author of a
// project, issue or comment, the member of a contributor row, the user of a
// profile.
type Resource interface {
	BelongsToProject() (projectID uint, ok bool)
	OwnerID() uint
}

// ProjectScope addresses a project by id only. It is used for list and create
// intents where the target does not exist yet.
type ProjectScope uint

func (p ProjectScope) BelongsToProject() (uint, bool) { return uint(p), p != 0 }

func (p ProjectScope) OwnerID() uint { return 0 }
