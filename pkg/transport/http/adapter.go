// Package http adapts the domain to the HTTP surface: route registration,
// request binding against derived shapes, and the graceful server.
package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vorlage-dev/vorlage/pkg/api"
	"github.com/vorlage-dev/vorlage/pkg/auth"
	"github.com/vorlage-dev/vorlage/pkg/auth/password"
	"github.com/vorlage-dev/vorlage/pkg/docs"
	"github.com/vorlage-dev/vorlage/pkg/schema"
	"github.com/vorlage-dev/vorlage/pkg/storage"
)

// Config holds adapter-level settings.
type Config struct {
	// MaxBodySize caps request bodies in bytes.
	MaxBodySize int64

	// SessionTTL sets the session cookie Max-Age. Zero means a browser
	// session cookie.
	SessionTTL time.Duration

	// SecureCookies marks the session cookie Secure. Leave off only for
	// plain-HTTP development setups.
	SecureCookies bool

	// Metrics exposes /metrics when set.
	Metrics bool

	// LoginRequestsPerMin caps login and register attempts per client
	// address per minute. Zero disables the cap.
	LoginRequestsPerMin int
}

// Adapter translates HTTP requests into store operations. All input shapes
// are derived once from the canonical definitions at construction.
type Adapter struct {
	store  storage.Store
	hasher password.Hasher
	cfg    Config

	// loginLimiter guards the anonymous credential endpoints. Nil when
	// disabled.
	loginLimiter *auth.IPLimiter

	userCreate schema.Shape
	userUpdate schema.Shape
	postCreate schema.Shape
	postUpdate schema.Shape
}

// NewAdapter creates an adapter over the given store.
func NewAdapter(store storage.Store, cfg Config) *Adapter {
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = 1 << 20 // 1 MB
	}
	a := &Adapter{
		store:      store,
		cfg:        cfg,
		userCreate: api.UserDefinition.CreateInput(),
		userUpdate: api.UserDefinition.UpdateInput(),
		postCreate: api.PostDefinition.CreateInput(),
		postUpdate: api.PostDefinition.UpdateInput(),
	}
	if cfg.LoginRequestsPerMin > 0 {
		a.loginLimiter = auth.NewIPLimiter(cfg.LoginRequestsPerMin)
	}
	return a
}

// Handler builds the route table. Identity enforcement happens in the auth
// middleware; handlers for protected routes assume an identity is present.
func (a *Adapter) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", a.register)
	mux.HandleFunc("POST /auth/login", a.login)
	mux.HandleFunc("GET /auth/logout", a.logout)
	mux.HandleFunc("GET /auth/me", a.getMe)
	mux.HandleFunc("PATCH /auth/me", a.patchMe)
	mux.HandleFunc("DELETE /auth/me", a.deleteMe)

	mux.HandleFunc("GET /keys", a.listKeys)
	mux.HandleFunc("POST /keys", a.createKey)
	mux.HandleFunc("GET /keys/{id}", a.getKey)
	mux.HandleFunc("DELETE /keys/{id}", a.deleteKey)

	mux.HandleFunc("GET /posts", a.listPosts)
	mux.HandleFunc("GET /posts/me", a.listMyPosts)
	mux.HandleFunc("GET /posts/{id}", a.getPost)
	mux.HandleFunc("POST /posts", a.createPost)
	mux.HandleFunc("PATCH /posts/{id}", a.patchPost)
	mux.HandleFunc("DELETE /posts/{id}", a.deletePost)

	mux.Handle("GET /docs", a.docsHandler())
	mux.Handle("GET /docs/api.json", a.docsHandler())

	mux.HandleFunc("GET /healthz", a.healthz)
	if a.cfg.Metrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	return mux
}

// Public reports whether a request needs no identity. The auth middleware
// consults this before running the credential chain.
func (a *Adapter) Public(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/metrics", "/docs", "/docs/api.json":
		return true
	case "/auth/register", "/auth/login":
		return r.Method == http.MethodPost
	case "/posts":
		return r.Method == http.MethodGet
	}
	// Individual posts are world-readable; /posts/me is the caller's own
	// listing and stays protected.
	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/posts/") && r.URL.Path != "/posts/me" {
		return true
	}
	return false
}

func (a *Adapter) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.store.HealthCheck(r.Context()); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}

// docsHandler assembles the OpenAPI document from the same shapes the
// handlers bind against.
func (a *Adapter) docsHandler() http.Handler {
	b := docs.NewBinder()

	b.Bind("POST", "/auth/register", docs.Operation{
		Summary: "Register a new account", Tag: "auth",
		Input: &a.userCreate,
		Responses: []docs.Response{
			{Status: 201, Description: "Account created, session cookie set", Shape: &api.UserDefinition},
			{Status: 400, Description: "Validation failed"},
			{Status: 409, Description: "Email or username already taken"},
		},
	})
	b.Bind("POST", "/auth/login", docs.Operation{
		Summary: "Log in with email and password", Tag: "auth",
		Input: &api.LoginShape,
		Responses: []docs.Response{
			{Status: 200, Description: "Session cookie set", Shape: &api.UserDefinition},
			{Status: 401, Description: "Invalid email or password"},
		},
	})
	b.Bind("GET", "/auth/logout", docs.Operation{
		Summary: "Revoke the presented credential", Tag: "auth",
		Security: docs.Authenticated,
		Responses: []docs.Response{
			{Status: 204, Description: "Credential revoked, cookie cleared"},
		},
	})
	b.Bind("GET", "/auth/me", docs.Operation{
		Summary: "Fetch the authenticated user", Tag: "auth",
		Security: docs.Authenticated,
		Responses: []docs.Response{
			{Status: 200, Description: "OK", Shape: &api.UserDefinition},
		},
	})
	b.Bind("PATCH", "/auth/me", docs.Operation{
		Summary: "Update the authenticated user", Tag: "auth",
		Description: "Password changes require an interactive session.",
		Security:    docs.Authenticated,
		Input:       &a.userUpdate,
		Responses: []docs.Response{
			{Status: 200, Description: "Updated", Shape: &api.UserDefinition},
			{Status: 400, Description: "Validation failed"},
			{Status: 409, Description: "Email or username already taken"},
		},
	})
	b.Bind("DELETE", "/auth/me", docs.Operation{
		Summary: "Delete the authenticated user", Tag: "auth",
		Description: "Credentials and posts are deleted along with the account.",
		Security:    docs.Authenticated,
		Responses: []docs.Response{
			{Status: 204, Description: "Deleted"},
		},
	})

	b.Bind("GET", "/keys", docs.Operation{
		Summary: "List API keys", Tag: "keys",
		Security: docs.Authenticated,
		Responses: []docs.Response{
			{Status: 200, Description: "OK"},
		},
	})
	b.Bind("POST", "/keys", docs.Operation{
		Summary: "Create an API key", Tag: "keys",
		Security: docs.Authenticated,
		Responses: []docs.Response{
			{Status: 201, Description: "Created; the id is the key"},
		},
	})
	b.Bind("GET", "/keys/{id}", docs.Operation{
		Summary: "Fetch an API key", Tag: "keys",
		Security: docs.Authenticated,
		Responses: []docs.Response{
			{Status: 200, Description: "OK"},
			{Status: 404, Description: "Unknown key"},
		},
	})
	b.Bind("DELETE", "/keys/{id}", docs.Operation{
		Summary: "Revoke an API key", Tag: "keys",
		Security: docs.Authenticated,
		Responses: []docs.Response{
			{Status: 204, Description: "Revoked"},
			{Status: 404, Description: "Unknown key"},
		},
	})

	b.Bind("GET", "/posts", docs.Operation{
		Summary: "List posts", Tag: "posts",
		Responses: []docs.Response{
			{Status: 200, Description: "Newest first", Shape: &api.PostDefinition},
		},
	})
	b.Bind("GET", "/posts/me", docs.Operation{
		Summary: "List the authenticated user's posts", Tag: "posts",
		Security: docs.Authenticated,
		Responses: []docs.Response{
			{Status: 200, Description: "Newest first", Shape: &api.PostDefinition},
		},
	})
	b.Bind("GET", "/posts/{id}", docs.Operation{
		Summary: "Fetch a post", Tag: "posts",
		Responses: []docs.Response{
			{Status: 200, Description: "OK", Shape: &api.PostDefinition},
			{Status: 404, Description: "Unknown post"},
		},
	})
	b.Bind("POST", "/posts", docs.Operation{
		Summary: "Create a post", Tag: "posts",
		Security: docs.Authenticated,
		Input:    &a.postCreate,
		Responses: []docs.Response{
			{Status: 201, Description: "Created", Shape: &api.PostDefinition},
			{Status: 400, Description: "Validation failed"},
		},
	})
	b.Bind("PATCH", "/posts/{id}", docs.Operation{
		Summary: "Update a post", Tag: "posts",
		Description: "Omitted fields are left unchanged.",
		Security:    docs.Authenticated,
		Input:       &a.postUpdate,
		Responses: []docs.Response{
			{Status: 200, Description: "Updated", Shape: &api.PostDefinition},
			{Status: 400, Description: "Validation failed"},
			{Status: 404, Description: "Unknown post"},
		},
	})
	b.Bind("DELETE", "/posts/{id}", docs.Operation{
		Summary: "Delete a post", Tag: "posts",
		Security: docs.Authenticated,
		Responses: []docs.Response{
			{Status: 204, Description: "Deleted"},
			{Status: 404, Description: "Unknown post"},
		},
	})

	return docs.Handler(b, docs.Info{
		Title:       "vorlage",
		Description: "Authenticated CRUD API template",
		Version:     "1.0.0",
	})
}
