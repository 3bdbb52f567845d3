// Package file serves offline tilesets from a directory tree.
//
// Every file matching **/*.tileset.json under the root is a tileset; its
// name is the path relative to the root without the suffix, so
// "de/berlin.tileset.json" is the tileset "de/berlin". Watch reports
// writes and removals through fsnotify.
package file
