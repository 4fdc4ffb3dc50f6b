package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vorlage-dev/vorlage/pkg/api"
)

func (a *Adapter) listKeys(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}

	keys, err := a.store.ListAPIKeys(r.Context(), id.UserID, p.limit(), p.offset())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

// createKey mints a new API key. The response is the only time the caller
// sees the id together with the knowledge that it is fresh; there is no
// separate secret to return.
func (a *Adapter) createKey(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	key, err := a.store.CreateAPIKey(r.Context(), id.UserID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, key)
}

func (a *Adapter) getKey(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	keyID, ok := pathID(w, r)
	if !ok {
		return
	}

	key, err := a.store.GetAPIKey(r.Context(), keyID, id.UserID)
	if err != nil {
		writeStoreError(w, r, err, api.NotFound(api.CodeUnknownKey, "unknown key"))
		return
	}
	writeJSON(w, http.StatusOK, key)
}

func (a *Adapter) deleteKey(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	keyID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := a.store.DeleteAPIKey(r.Context(), keyID, id.UserID); err != nil {
		writeStoreError(w, r, err, api.NotFound(api.CodeUnknownKey, "unknown key"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} path segment.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.WriteErrors(w, api.ValidationFailed("id", "id must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}
