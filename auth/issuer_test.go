package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultline/escrowbackend/models"
	"github.com/vaultline/escrowbackend/testutil"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestIssuePairBoundToNewSession(t *testing.T) {
	sessions := testutil.NewSessionStore()
	users := testutil.NewUserStore()
	issuer := NewIssuer(newTestCodec(15*time.Minute), sessions, users)

	id := bson.NewObjectID()
	pair, err := issuer.Issue(context.Background(), id, "jane@example.com", models.RoleUser, "go-test")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, _, err := issuer.codec.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)

	sess, err := sessions.GetByID(context.Background(), claims.SessionID)
	require.NoError(t, err)
	assert.True(t, sess.Valid)
	assert.Equal(t, id, sess.UserID)
	assert.Equal(t, "go-test", sess.UserAgent)
}

func TestIssueFailsWhenSessionWriteFails(t *testing.T) {
	sessions := testutil.NewSessionStore()
	sessions.CreateErr = errors.New("mongo down")
	issuer := NewIssuer(newTestCodec(15*time.Minute), sessions, testutil.NewUserStore())

	pair, err := issuer.Issue(context.Background(), bson.NewObjectID(), "jane@example.com", models.RoleUser, "")
	assert.Error(t, err)
	assert.Nil(t, pair)
}

func TestIssueForLoginRecordsRefreshToken(t *testing.T) {
	sessions := testutil.NewSessionStore()
	users := testutil.NewUserStore()
	issuer := NewIssuer(newTestCodec(15*time.Minute), sessions, users)

	user := &models.User{Email: "jane@example.com", Role: models.RoleUser}
	require.NoError(t, users.Create(context.Background(), user))

	pair, err := issuer.IssueForLogin(context.Background(), user, "go-test")
	require.NoError(t, err)

	stored, err := users.FindByID(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored.RefreshToken)
}
