// Package cli provides the interactive gophtasks command-line client.
//
// The App restores a stored session on start, runs a background
// connectivity watcher and then reads commands from stdin until the user
// exits. Which commands are accepted depends on whether someone is signed in:
//
//	signed out: signin, signup, mode, auth, help, exit
//	signed in:  list, add, edit <id>, update <id>, delete <id>, refresh,
//	            logout, help, exit
//
// Signing in loads the user's tasks and opens the change feed; signing out
// closes the feed and drops everything cached locally.
package cli
