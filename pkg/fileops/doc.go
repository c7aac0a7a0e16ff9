// Package fileops provides the low-level file primitives fsgate builds
// its safe I/O layer on: exclusive creation, atomic replace via temp file
// and rename, symlink-non-following opens, and symlink inspection.
//
// Functions here take plain paths and perform no policy checks; callers
// are expected to have validated paths through the guard package first.
// Each primitive is chosen so that an adversarial filesystem change
// between validation and use turns into a detectable error instead of a
// silent escape: exclusive create fails with EEXIST, rename replaces a
// destination symlink without traversing it, and no-follow opens refuse a
// final-component symlink.
package fileops
