// Package selector turns raw, user-supplied path strings into the
// validated file list a pack is built from.
//
// # Selecting Files
//
//	files := selector.Select([]string{"~/samples/kick.wav", "./snare.WAV", "notes.txt"})
//	// files holds the absolute, symlink-resolved paths of the two WAV files
//
// # Accumulating a Selection
//
// Front-ends that let users add files several times use a Selection:
//
//	sel := selector.NewSelection()
//	added, total := sel.Add(dialogPaths)
//	added, total = sel.Add(selector.SplitPayload(dropText))
//	sel.Clear()
package selector
