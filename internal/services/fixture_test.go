package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xavierjeanne/softdesk/internal/authz"
	"github.com/xavierjeanne/softdesk/internal/models"
	"github.com/xavierjeanne/softdesk/internal/models/modelstest"
	"gorm.io/gorm"
)

type fixture struct {
	ctx      context.Context
	db       *gorm.DB
	registry *ContributorRegistry
	projects *ProjectService
	issues   *IssueService
	comments *CommentService
	users    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := modelstest.NewDB(t)
	return &fixture{
		ctx:      context.Background(),
		db:       db,
		registry: NewContributorRegistry(db),
		projects: NewProjectService(db),
		issues:   NewIssueService(db),
		comments: NewCommentService(db),
		users:    NewUserService(db),
	}
}

func (f *fixture) user(t *testing.T, username string) authz.Identity {
	t.Helper()
	return modelstest.CreateUser(t, f.db, username, 30).Identity()
}

func (f *fixture) project(t *testing.T, author authz.Identity, name string) *models.Project {
	t.Helper()
	p, err := f.projects.Create(f.ctx, author, &CreateProjectRequest{Name: name, Type: "BACK_END"})
	require.NoError(t, err)
	return p
}

func (f *fixture) join(t *testing.T, author authz.Identity, project *models.Project, member authz.Identity) *models.Contributor {
	t.Helper()
	row, err := f.registry.AddContributor(f.ctx, author, project.ID, member.UserID)
	require.NoError(t, err)
	return row
}

func (f *fixture) issue(t *testing.T, author authz.Identity, project *models.Project) *models.Issue {
	t.Helper()
	issue, err := f.issues.Create(f.ctx, author, project.ID, &CreateIssueRequest{Title: "crash on login", Tag: "BUG", Priority: "HIGH"})
	require.NoError(t, err)
	return issue
}

func requireCode(t *testing.T, err error, code authz.Code) {
	t.Helper()
	require.Error(t, err)
	got, ok := authz.CodeOf(err)
	require.Truef(t, ok, "error %v is outside the taxonomy", err)
	require.Equalf(t, code, got, "error: %v", err)
}

func uintPtr(v uint) *uint { return &v }

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }
