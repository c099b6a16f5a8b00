// Package api exposes the account controller over HTTP.
//
// The surface is a small JSON API: unauthenticated routes for sign-in
// (credential cascade, instant login, social sign-in with its phone
// follow-up, guest entry, onboarding skip) and bearer-token routes for
// profile changes and logout. Signed-in responses carry a signed session
// token; the TokenIssuer in this package mints and verifies it.
package api
