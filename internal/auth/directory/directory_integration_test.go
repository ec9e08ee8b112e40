//go:build integration

package directory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"canvass/internal/auth/directory"
	"canvass/internal/auth/token"
	dErrors "canvass/pkg/domain-errors"
	"canvass/pkg/testutil/containers"
)

type DirectorySuite struct {
	suite.Suite
	pg  *containers.PostgresContainer
	dir *directory.Directory
}

func TestDirectorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.dir = directory.New(s.pg.DB, token.NewIssuer("integration-key"), time.Hour)
	s.Require().NoError(s.dir.EnsureSchema(context.Background()))
}

func (s *DirectorySuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "operator_sessions", "operators"))
}

func (s *DirectorySuite) TestSignInAndOut() {
	ctx := context.Background()
	_, err := s.dir.AddOperator(ctx, " Field@Example.org ", "s3cret")
	s.Require().NoError(err)

	session, err := s.dir.SignIn(ctx, "field@example.org", "s3cret")
	s.Require().NoError(err)
	s.Equal("field@example.org", session.Email)
	s.NotEmpty(session.AccessToken)

	active, err := s.dir.Active(ctx, session.AccessToken)
	s.Require().NoError(err)
	s.True(active)

	s.Require().NoError(s.dir.SignOut(ctx, session))
	active, err = s.dir.Active(ctx, session.AccessToken)
	s.Require().NoError(err)
	s.False(active)
}

func (s *DirectorySuite) TestBadCredentialsLookAlike() {
	ctx := context.Background()
	_, err := s.dir.AddOperator(ctx, "field@example.org", "s3cret")
	s.Require().NoError(err)

	_, wrongPassword := s.dir.SignIn(ctx, "field@example.org", "nope")
	_, unknownEmail := s.dir.SignIn(ctx, "ghost@example.org", "s3cret")

	s.True(dErrors.HasCode(wrongPassword, dErrors.CodeUnauthorized))
	s.Equal(dErrors.MessageOf(wrongPassword), dErrors.MessageOf(unknownEmail))
}

func (s *DirectorySuite) TestDuplicateOperator() {
	ctx := context.Background()
	_, err := s.dir.AddOperator(ctx, "field@example.org", "a")
	s.Require().NoError(err)
	_, err = s.dir.AddOperator(ctx, "FIELD@example.org", "b")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}
