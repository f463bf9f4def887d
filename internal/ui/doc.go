// Package ui implements the interactive terminal view for dirsizer using
// Bubbletea: a progress box while scanning, then a sortable result table next
// to a treemap of the focused directory.
package ui
