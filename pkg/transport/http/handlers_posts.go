package http

import (
	"net/http"

	"github.com/vorlage-dev/vorlage/pkg/api"
	"github.com/vorlage-dev/vorlage/pkg/storage"
)

func (a *Adapter) listPosts(w http.ResponseWriter, r *http.Request) {
	p, ok := paginate(w, r)
	if !ok {
		return
	}

	posts, err := a.store.ListPosts(r.Context(), p.limit(), p.offset())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (a *Adapter) listMyPosts(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	p, ok := paginate(w, r)
	if !ok {
		return
	}

	posts, err := a.store.ListUserPosts(r.Context(), id.UserID, p.limit(), p.offset())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (a *Adapter) getPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r)
	if !ok {
		return
	}

	post, err := a.store.GetPost(r.Context(), postID)
	if err != nil {
		writeStoreError(w, r, err, api.NotFound(api.CodeUnknownPost, "unknown post"))
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (a *Adapter) createPost(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	values, ok := a.bindBody(w, r, a.postCreate)
	if !ok {
		return
	}

	post, err := a.store.CreatePost(r.Context(), api.Post{
		UserID:  id.UserID,
		Title:   values["title"],
		Content: values["content"],
	})
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// patchPost applies a partial update. Ownership is enforced in the store
// query; a foreign post is indistinguishable from an absent one.
func (a *Adapter) patchPost(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r)
	if !ok {
		return
	}
	values, ok := a.bindBody(w, r, a.postUpdate)
	if !ok {
		return
	}

	post, err := a.store.UpdatePost(r.Context(), postID, id.UserID, storage.PostUpdate{
		Title:   values.Get("title"),
		Content: values.Get("content"),
	})
	if err != nil {
		writeStoreError(w, r, err, api.NotFound(api.CodeUnknownPost, "unknown post"))
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (a *Adapter) deletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := a.store.DeletePost(r.Context(), postID, id.UserID); err != nil {
		writeStoreError(w, r, err, api.NotFound(api.CodeUnknownPost, "unknown post"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
