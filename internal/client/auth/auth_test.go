package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake backend ----

type fakeBackend struct {
	session    *models.Session
	signUpErr  error
	signInErr  error
	refreshErr error
	signOutErr error

	refreshedWith string
	signOutCalls  int
	onRefresh     func(*models.Session)
}

func (f *fakeBackend) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.session, nil
}
func (f *fakeBackend) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.session, nil
}
func (f *fakeBackend) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	f.refreshedWith = refreshToken
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.session, nil
}
func (f *fakeBackend) SignOut(ctx context.Context) error {
	f.signOutCalls++
	return f.signOutErr
}
func (f *fakeBackend) OnTokenRefresh(fn func(*models.Session)) { f.onRefresh = fn }

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func stored(t *testing.T, db *sql.DB, key string) string {
	t.Helper()
	v, err := metadata.NewSQLiteRepository(db).Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

type recorded struct {
	event models.AuthEvent
	email string
}

func record(s *Service) *[]recorded {
	var got []recorded
	s.OnAuthStateChange(func(e models.AuthEvent, sess *models.Session) {
		r := recorded{event: e}
		if sess != nil {
			r.email = sess.Email
		}
		got = append(got, r)
	})
	return &got
}

var alice = &models.Session{UserID: "u1", Email: "a@x.com", AccessToken: "A", RefreshToken: "R"}

// ---- tests ----

func TestSignInWithPassword_PersistsAndNotifies(t *testing.T) {
	db := setupDB(t)
	s := NewService(&fakeBackend{session: alice}, db, logging.NewNop())
	got := record(s)

	sess, err := s.SignInWithPassword(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, alice, sess)

	assert.Equal(t, []recorded{{models.AuthSignedIn, "a@x.com"}}, *got)
	assert.Equal(t, "R", stored(t, db, metadata.KeyRefreshToken))
	assert.Equal(t, "a@x.com", stored(t, db, metadata.KeyEmail))
}

func TestSignUp_RejectionIsReturnedUnchanged(t *testing.T) {
	rejection := &client.RemoteError{Kind: client.ErrAlreadyExists, Message: "user already registered"}
	s := NewService(&fakeBackend{signUpErr: rejection}, setupDB(t), logging.NewNop())
	got := record(s)

	_, err := s.SignUp(context.Background(), "a@x.com", "secret1")
	require.ErrorIs(t, err, client.ErrAlreadyExists)
	assert.Equal(t, "user already registered", err.Error())
	assert.Empty(t, *got)
}

func TestSignOut_ClearsEvenWhenServerFails(t *testing.T) {
	db := setupDB(t)
	b := &fakeBackend{session: alice, signOutErr: client.ErrUnavailable}
	s := NewService(b, db, logging.NewNop())

	_, err := s.SignInWithPassword(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	got := record(s)

	err = s.SignOut(context.Background())
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Equal(t, 1, b.signOutCalls)
	assert.Equal(t, []recorded{{models.AuthSignedOut, ""}}, *got)
	assert.Empty(t, stored(t, db, metadata.KeyRefreshToken))

	cur, err := s.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestGetSession_NothingStored(t *testing.T) {
	b := &fakeBackend{session: alice}
	s := NewService(b, setupDB(t), logging.NewNop())

	sess, err := s.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Empty(t, b.refreshedWith)
}

func TestGetSession_RestoresFromStoredToken(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, metadata.NewSQLiteRepository(db).Set(context.Background(), metadata.KeyRefreshToken, "R0"))

	b := &fakeBackend{session: alice}
	s := NewService(b, db, logging.NewNop())

	sess, err := s.GetSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sess.Email)
	assert.Equal(t, "R0", b.refreshedWith)
	assert.Equal(t, "R", stored(t, db, metadata.KeyRefreshToken))

	// second call is served from memory
	b.refreshedWith = ""
	_, err = s.GetSession(context.Background())
	require.NoError(t, err)
	assert.Empty(t, b.refreshedWith)
}

func TestGetSession_DeadTokenIsForgotten(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, metadata.NewSQLiteRepository(db).Set(context.Background(), metadata.KeyRefreshToken, "R0"))

	b := &fakeBackend{refreshErr: &client.RemoteError{Kind: client.ErrUnauthorized, Message: "refresh token expired"}}
	s := NewService(b, db, logging.NewNop())

	_, err := s.GetSession(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Empty(t, stored(t, db, metadata.KeyRefreshToken))
}

func TestGetSession_NetworkErrorKeepsToken(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, metadata.NewSQLiteRepository(db).Set(context.Background(), metadata.KeyRefreshToken, "R0"))

	s := NewService(&fakeBackend{refreshErr: client.ErrUnavailable}, db, logging.NewNop())

	_, err := s.GetSession(context.Background())
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Equal(t, "R0", stored(t, db, metadata.KeyRefreshToken))
}

func TestTokenRefreshCallback(t *testing.T) {
	db := setupDB(t)
	b := &fakeBackend{}
	s := NewService(b, db, logging.NewNop())
	got := record(s)

	require.NotNil(t, b.onRefresh)
	b.onRefresh(&models.Session{UserID: "u1", Email: "a@x.com", RefreshToken: "R9"})

	assert.Equal(t, []recorded{{models.AuthTokenRefreshed, "a@x.com"}}, *got)
	assert.Equal(t, "R9", stored(t, db, metadata.KeyRefreshToken))
}

func TestOnAuthStateChange_OrderAndUnsubscribe(t *testing.T) {
	s := NewService(&fakeBackend{session: alice}, setupDB(t), logging.NewNop())

	var order []string
	s.OnAuthStateChange(func(models.AuthEvent, *models.Session) { order = append(order, "first") })
	unsub := s.OnAuthStateChange(func(models.AuthEvent, *models.Session) { order = append(order, "second") })
	s.OnAuthStateChange(func(models.AuthEvent, *models.Session) { order = append(order, "third") })

	_, err := s.SignInWithPassword(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)

	unsub()
	unsub()
	order = nil

	require.NoError(t, s.SignOut(context.Background()))
	assert.Equal(t, []string{"first", "third"}, order)
}

func TestSignIn_PersistFailureIsNotFatal(t *testing.T) {
	db := setupDB(t)
	s := NewService(&fakeBackend{session: alice}, db, logging.NewNop())
	require.NoError(t, db.Close())

	sess, err := s.SignInWithPassword(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, alice, sess)
}
