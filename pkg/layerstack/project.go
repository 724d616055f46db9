package layerstack

// Stack is one ordered list of root nodes under a texture set.
type Stack interface {
	// RootNodes returns the stack's top-level nodes, topmost first.
	RootNodes() []Node
}

// TextureSet is a named grouping of render-output channels. Traversal
// iterates each set's stacks in isolation.
type TextureSet interface {
	Name() string
	Stacks() []Stack
}

// Project is the open document in the host application. It is the capability
// boundary for batch mutation: every user-initiated run of edits must happen
// inside one ScopedModification so the host records it as a single undo step
// and can discard it wholesale on abort. layerforge never nests scopes.
type Project interface {
	TextureSets() []TextureSet

	// ScopedModification runs fn inside the host's atomic modification scope
	// labelled for the undo history. When fn returns an error the host rolls
	// every mutation made inside the scope back and the error is returned.
	ScopedModification(label string, fn func() error) error
}
