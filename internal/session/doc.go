// Package session defines the boundary to the external identity provider.
//
// The provider owns the authenticated principal; this package consumes it
// through a narrow set of verbs (create account, sign in, sign out, send
// verification email, reload) and tracks the current identity so screens
// can observe sign-in state changes.
package session
