// Package tags implements the local tag registry.
//
// Tags follow Docker tag-name conventions: a lowercase repository
// component and an explicit tag component separated by a colon
// (e.g. "bot:latest"). Each tag points at an image target. Creating or
// updating a tag whose target names another tag resolves through to that
// tag's own target, so the registry stores no chains.
//
// Records live in a SQLite database under the XDG data directory and are
// listed newest first with skip/limit pagination.
package tags
