package api

import "github.com/vorlage-dev/vorlage/pkg/schema"

// PostDefinition is the canonical definition of a post. The create and
// update input shapes for the /posts routes are derived from this table;
// adding a field here is the only change needed to expose it for input.
var PostDefinition = schema.Definition{
	Name: "Post",
	Fields: []schema.Field{
		{Name: "id", Type: schema.TypeString, Doc: "The unique identifier of the post.", Mutability: schema.ServerOnly},
		{Name: "user_id", Type: schema.TypeString, Doc: "The user that created the post.", Mutability: schema.ServerOnly},
		{Name: "title", Type: schema.TypeString, Doc: "The title of the post.", Mutability: schema.RequiredOnCreate, Rules: schema.Rules{MinLen: 3, MaxLen: 128}},
		{Name: "content", Type: schema.TypeString, Doc: "The content of the post in Markdown format.", Mutability: schema.RequiredOnCreate},
		{Name: "created_at", Type: schema.TypeString, Doc: "The creation time of the post.", Mutability: schema.ServerOnly},
	},
}

// UserDefinition is the canonical definition of a user account. Registration
// binds the derived create shape; profile updates bind the update shape,
// where every field is optional.
var UserDefinition = schema.Definition{
	Name: "User",
	Fields: []schema.Field{
		{Name: "id", Type: schema.TypeString, Doc: "The unique identifier of the user.", Mutability: schema.ServerOnly},
		{Name: "email", Type: schema.TypeString, Doc: "The user's primary email address, used for logging in.", Mutability: schema.RequiredOnCreate, Rules: schema.Rules{Email: true}},
		{Name: "username", Type: schema.TypeString, Doc: "The username that is displayed to the public.", Mutability: schema.RequiredOnCreate, Rules: schema.Rules{MinLen: 3, MaxLen: 16, Alphanumeric: true}},
		{Name: "password", Type: schema.TypeString, Doc: "The account password.", Mutability: schema.RequiredOnCreate, Rules: schema.Rules{MinLen: 8, MaxLen: 128}, Secret: true},
		{Name: "created_at", Type: schema.TypeString, Doc: "The creation time of the user.", Mutability: schema.ServerOnly},
	},
}

// LoginShape is the input shape for POST /auth/login. Login is not an entity
// operation, so the shape is declared directly instead of derived.
var LoginShape = schema.Shape{
	Name: "Login",
	Fields: []schema.InputField{
		{Name: "email", Type: schema.TypeString, Doc: "The email address of the account.", Required: true, Rules: schema.Rules{Email: true}},
		{Name: "password", Type: schema.TypeString, Doc: "The account password.", Required: true, Rules: schema.Rules{MinLen: 8, MaxLen: 128}, Secret: true},
	},
}
