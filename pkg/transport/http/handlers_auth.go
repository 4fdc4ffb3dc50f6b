package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vorlage-dev/vorlage/pkg/api"
	"github.com/vorlage-dev/vorlage/pkg/auth"
	"github.com/vorlage-dev/vorlage/pkg/storage"
)

// register creates a user and opens a session in one round trip. The user id
// is allocated here because the password hash is salted with it.
func (a *Adapter) register(w http.ResponseWriter, r *http.Request) {
	if !a.allowAnonymous(w, r) {
		return
	}
	values, ok := a.bindBody(w, r, a.userCreate)
	if !ok {
		return
	}

	userID := uuid.New()
	user, err := a.store.CreateUser(r.Context(), api.User{
		ID:       userID,
		Email:    values["email"],
		Username: values["username"],
		Password: a.hasher.Hash(values["password"], userID),
	})
	if err != nil {
		if !writeConflict(w, err) {
			writeInternal(w, r, err)
		}
		return
	}

	sess, err := a.store.CreateSession(r.Context(), user.ID)
	if err != nil {
		// Roll back the half-open account, or a retry of this register
		// would answer 409 for an account that never finished. The rollback
		// must outlive a canceled request context.
		if delErr := a.store.DeleteUser(context.WithoutCancel(r.Context()), user.ID); delErr != nil {
			slog.Error("rolling back user after session failure",
				"user_id", user.ID,
				"error", delErr,
			)
		}
		writeInternal(w, r, err)
		return
	}

	a.setSessionCookie(w, sess.ID)
	writeJSON(w, http.StatusCreated, user)
}

// login verifies email and password and opens a session. Unknown emails burn
// a decoy hash so response timing does not reveal whether an account exists,
// and every failure answers with the same code.
func (a *Adapter) login(w http.ResponseWriter, r *http.Request) {
	if !a.allowAnonymous(w, r) {
		return
	}
	values, ok := a.bindBody(w, r, api.LoginShape)
	if !ok {
		return
	}

	user, err := a.store.GetUserByEmail(r.Context(), values["email"])
	if errors.Is(err, storage.ErrNotFound) {
		a.hasher.VerifyDecoy(values["password"])
		api.WriteErrors(w, api.Unauthenticated(api.CodeInvalidCredentials, "invalid email or password"))
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	if !a.hasher.Verify(values["password"], user.ID, user.Password) {
		api.WriteErrors(w, api.Unauthenticated(api.CodeInvalidCredentials, "invalid email or password"))
		return
	}

	sess, err := a.store.CreateSession(r.Context(), user.ID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	a.setSessionCookie(w, sess.ID)
	writeJSON(w, http.StatusOK, user)
}

// logout revokes exactly the credential that authenticated this request: the
// session for cookie callers, the API key itself for bearer callers.
func (a *Adapter) logout(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var err error
	switch id.Mechanism {
	case auth.MechanismAPIKey:
		err = a.store.RevokeAPIKey(r.Context(), id.CredentialID)
	default:
		err = a.store.RevokeSession(r.Context(), id.CredentialID)
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	a.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (a *Adapter) getMe(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	user, err := a.store.GetUserByID(r.Context(), id.UserID)
	if err != nil {
		// The credential resolved moments ago and deletion cascades, so a
		// missing user is a server-side inconsistency, not a client 404.
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// patchMe applies a partial profile update. A password change proves intent
// with an interactive session; a leaked API key must not be enough to lock
// the owner out.
func (a *Adapter) patchMe(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	values, ok := a.bindBody(w, r, a.userUpdate)
	if !ok {
		return
	}

	if values.Has("password") && id.Mechanism != auth.MechanismSession {
		api.WriteErrors(w, api.Unauthenticated(api.CodeSessionRequired,
			"password changes require an interactive session").
			WithDetail("mechanism", string(id.Mechanism)))
		return
	}

	upd := storage.UserUpdate{
		Email:    values.Get("email"),
		Username: values.Get("username"),
	}
	if values.Has("password") {
		upd.Password = a.hasher.Hash(values["password"], id.UserID)
	}

	user, err := a.store.UpdateUser(r.Context(), id.UserID, upd)
	if err != nil {
		if !writeConflict(w, err) {
			writeInternal(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// deleteMe removes the account. Credentials and posts cascade, so the
// presented credential stops resolving immediately.
func (a *Adapter) deleteMe(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	if err := a.store.DeleteUser(r.Context(), id.UserID); err != nil {
		writeInternal(w, r, err)
		return
	}

	a.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
