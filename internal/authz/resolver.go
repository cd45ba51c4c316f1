package authz

import (
	"context"

	"github.com/xavierjeanne/softdesk/pkg/logger"
)

// Membership answers project membership questions for the resolver.
type Membership interface {
	RoleOf(ctx context.Context, userID, projectID uint) (role Role, member bool, err error)
}

// Resolver evaluates actions against project membership and resource
// ownership. It holds no per-request state.
type Resolver struct {
	members Membership
}

func NewResolver(members Membership) *Resolver {
	return &Resolver{members: members}
}

// Decide returns whether identity may perform action on res.
//
// For create and list intents res is the parent scope: the project for
// issues and contributors, the issue for comments. A storage failure is
// returned as err and is never turned into a denial.
func (r *Resolver) Decide(ctx context.Context, id Identity, action Action, kind Kind, res Resource) (Decision, error) {
	d, err := r.decide(ctx, id, action, kind, res)
	if err != nil {
		return Decision{}, err
	}
	logger.Debug().
		Str("identity", id.String()).
		Str("action", string(action)).
		Str("kind", string(kind)).
		Str("decision", d.String()).
		Msg("authz decision")
	return d, nil
}

// Require is Decide followed by Decision.Err.
func (r *Resolver) Require(ctx context.Context, id Identity, action Action, kind Kind, res Resource) error {
	d, err := r.Decide(ctx, id, action, kind, res)
	if err != nil {
		return err
	}
	return d.Err(kind)
}

func (r *Resolver) decide(ctx context.Context, id Identity, action Action, kind Kind, res Resource) (Decision, error) {
	if !id.IsAuthenticated() {
		return Deny(ReasonUnauthenticated, "authentication required"), nil
	}

	switch kind {
	case KindUser:
		return decideUser(id, action, res), nil
	case KindProject:
		if action == ActionCreate {
			return Allow(), nil
		}
	}

	if res == nil {
		return Deny(ReasonNotFound, "resource not found"), nil
	}
	projectID, ok := res.BelongsToProject()
	if !ok {
		return Deny(ReasonNotFound, "resource not found"), nil
	}

	role, member, err := r.members.RoleOf(ctx, id.UserID, projectID)
	if err != nil {
		return Decision{}, err
	}
	if kind == KindProject && res.OwnerID() == id.UserID {
		member = true
		role = RoleAuthor
	}
	if !member {
		return Deny(ReasonNotFound, "resource not found"), nil
	}

	if action == ActionRead {
		return Allow(), nil
	}

	switch kind {
	case KindProject:
		if action == ActionUpdate || action == ActionDelete {
			return authorOnly(res.OwnerID() == id.UserID, "only the project author can modify this project"), nil
		}
	case KindContributor:
		switch action {
		case ActionCreate:
			return authorOnly(role == RoleAuthor, "only the project author can add contributors"), nil
		case ActionDelete:
			return authorOnly(role == RoleAuthor, "only the project author can remove contributors"), nil
		case ActionUpdate:
			return Deny(ReasonForbidden, "contributors cannot be updated"), nil
		}
	case KindIssue:
		switch action {
		case ActionCreate:
			return Allow(), nil
		case ActionUpdate, ActionDelete, ActionAssign:
			return authorOnly(res.OwnerID() == id.UserID, "only the issue author can modify this issue"), nil
		}
	case KindComment:
		switch action {
		case ActionCreate:
			return Allow(), nil
		case ActionUpdate, ActionDelete:
			return authorOnly(res.OwnerID() == id.UserID, "only the comment author can modify this comment"), nil
		}
	}
	return Deny(ReasonForbidden, "action not permitted"), nil
}

func decideUser(id Identity, action Action, res Resource) Decision {
	if res == nil {
		return Deny(ReasonNotFound, "user not found")
	}
	switch action {
	case ActionRead:
		return Allow()
	case ActionUpdate, ActionDelete:
		return authorOnly(res.OwnerID() == id.UserID, "you can only modify your own profile")
	}
	return Deny(ReasonForbidden, "action not permitted")
}

func authorOnly(ok bool, msg string) Decision {
	if ok {
		return Allow()
	}
	return Deny(ReasonForbidden, msg)
}
