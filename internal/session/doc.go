// Package session keeps the client-held session of one browser: the backend credential
// token and the cached user record. Both values live in a per-browser namespace of a
// key-value Storage and are always written and removed together.
package session
