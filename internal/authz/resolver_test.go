package authz

import (
	"context"
	"errors"
	"testing"
)

type membershipStub struct {
	roles map[[2]uint]Role
	err   error
}

func (m membershipStub) RoleOf(_ context.Context, userID, projectID uint) (Role, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	role, ok := m.roles[[2]uint{userID, projectID}]
	return role, ok, nil
}

type resourceStub struct {
	project uint
	ok      bool
	author  uint
}

func (r resourceStub) BelongsToProject() (uint, bool) { return r.project, r.ok }
func (r resourceStub) OwnerID() uint { return r.author }

const (
	author      uint = 1
	contributor uint = 2
	outsider    uint = 3
	projectID   uint = 10
)

func newTestResolver() *Resolver {
	return NewResolver(membershipStub{roles: map[[2]uint]Role{
		{author, projectID}:      RoleAuthor,
		{contributor, projectID}: RoleContributor,
	}})
}

func TestResolver_Decide(t *testing.T) {
	project := resourceStub{project: projectID, ok: true, author: author}
	issueByContributor := resourceStub{project: projectID, ok: true, author: contributor}
	orphan := resourceStub{ok: false, author: contributor}
	profile := resourceStub{author: contributor}

	tests := []struct {
		name   string
		user   uint
		action Action
		kind   Kind
		res    Resource
		want   Decision
	}{
		{"anonymous is unauthenticated", 0, ActionRead, KindProject, project, Deny(ReasonUnauthenticated, "")},
		{"anyone may create a project", outsider, ActionCreate, KindProject, nil, Allow()},
		{"author reads project", author, ActionRead, KindProject, project, Allow()},
		{"contributor reads project", contributor, ActionRead, KindProject, project, Allow()},
		{"outsider cannot see project", outsider, ActionRead, KindProject, project, Deny(ReasonNotFound, "")},
		{"contributor cannot update project", contributor, ActionUpdate, KindProject, project, Deny(ReasonForbidden, "")},
		{"author updates project", author, ActionUpdate, KindProject, project, Allow()},
		{"author deletes project", author, ActionDelete, KindProject, project, Allow()},
		{"outsider cannot delete project", outsider, ActionDelete, KindProject, project, Deny(ReasonNotFound, "")},

		{"contributor lists members", contributor, ActionRead, KindContributor, ProjectScope(projectID), Allow()},
		{"author adds member", author, ActionCreate, KindContributor, ProjectScope(projectID), Allow()},
		{"contributor cannot add member", contributor, ActionCreate, KindContributor, ProjectScope(projectID), Deny(ReasonForbidden, "")},
		{"author removes member", author, ActionDelete, KindContributor, issueByContributor, Allow()},
		{"contributor cannot remove member", contributor, ActionDelete, KindContributor, issueByContributor, Deny(ReasonForbidden, "")},
		{"membership rows are never updated", author, ActionUpdate, KindContributor, issueByContributor, Deny(ReasonForbidden, "")},

		{"contributor creates issue", contributor, ActionCreate, KindIssue, ProjectScope(projectID), Allow()},
		{"outsider cannot create issue", outsider, ActionCreate, KindIssue, ProjectScope(projectID), Deny(ReasonNotFound, "")},
		{"issue author updates issue", contributor, ActionUpdate, KindIssue, issueByContributor, Allow()},
		{"project author cannot update others issue", author, ActionUpdate, KindIssue, issueByContributor, Deny(ReasonForbidden, "")},
		{"issue author assigns", contributor, ActionAssign, KindIssue, issueByContributor, Allow()},
		{"project author cannot assign others issue", author, ActionAssign, KindIssue, issueByContributor, Deny(ReasonForbidden, "")},

		{"contributor comments", author, ActionCreate, KindComment, issueByContributor, Allow()},
		{"comment author edits comment", contributor, ActionUpdate, KindComment, issueByContributor, Allow()},
		{"project author cannot edit others comment", author, ActionUpdate, KindComment, issueByContributor, Deny(ReasonForbidden, "")},
		{"deleted parent is not found", contributor, ActionRead, KindComment, orphan, Deny(ReasonNotFound, "")},
		{"nil resource is not found", contributor, ActionRead, KindIssue, nil, Deny(ReasonNotFound, "")},

		{"anyone reads a profile", outsider, ActionRead, KindUser, profile, Allow()},
		{"owner updates profile", contributor, ActionUpdate, KindUser, profile, Allow()},
		{"others cannot update profile", author, ActionUpdate, KindUser, profile, Deny(ReasonForbidden, "")},
		{"others cannot delete profile", author, ActionDelete, KindUser, profile, Deny(ReasonForbidden, "")},
	}

	r := newTestResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := Identity{UserID: tt.user}
			got, err := r.Decide(context.Background(), id, tt.action, tt.kind, tt.res)
			if err != nil {
				t.Fatalf("Decide() error = %v", err)
			}
			if got.Allowed != tt.want.Allowed || got.Reason != tt.want.Reason {
				t.Errorf("Decide() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolver_AuthorWithoutMembershipRowCanReadOwnProject(t *testing.T) {
	r := NewResolver(membershipStub{roles: map[[2]uint]Role{}})
	project := resourceStub{project: projectID, ok: true, author: author}

	d, err := r.Decide(context.Background(), Identity{UserID: author}, ActionRead, KindProject, project)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if !d.Allowed {
		t.Errorf("author should read their own project, got %s", d)
	}
}

func TestResolver_StorageErrorIsNotADenial(t *testing.T) {
	boom := errors.New("connection reset")
	r := NewResolver(membershipStub{err: boom})

	_, err := r.Decide(context.Background(), Identity{UserID: author}, ActionRead, KindIssue, ProjectScope(projectID))
	if !errors.Is(err, boom) {
		t.Errorf("Decide() error = %v, want %v", err, boom)
	}
	if _, ok := CodeOf(err); ok {
		t.Error("storage failures must stay outside the error taxonomy")
	}
}

func TestResolver_Require(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()
	project := resourceStub{project: projectID, ok: true, author: author}

	if err := r.Require(ctx, Identity{UserID: author}, ActionUpdate, KindProject, project); err != nil {
		t.Errorf("Require() error = %v, want nil", err)
	}

	err := r.Require(ctx, Identity{UserID: contributor}, ActionUpdate, KindProject, project)
	if !IsCode(err, CodeForbidden) {
		t.Errorf("Require() error = %v, want forbidden", err)
	}

	err = r.Require(ctx, Identity{UserID: outsider}, ActionUpdate, KindProject, project)
	if !IsCode(err, CodeNotFound) {
		t.Errorf("Require() error = %v, want not found", err)
	}
	if err.Error() != "project not found" {
		t.Errorf("message = %q, want %q", err.Error(), "project not found")
	}
}
