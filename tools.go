//go:build tools

package tools

// mockery is used as an installed binary, so no blank import is needed.
// Run: mockery (from the repository root) to regenerate pkg/hal/mocks.
