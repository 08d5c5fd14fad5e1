// Package model defines the core data structures used throughout
// the sample-pack-maker application.
//
// # File List
//
// FileList is the ordered, de-duplicated selection of WAV files that
// feeds a batch run. Order matters: it decides output numbering.
//
// # Pack Entries
//
// PackEntry describes where one source file lands in the output folder:
//
//	name := model.DestinationName("Drums Vol1", 1, "/samples/kick.WAV")
//	fmt.Println(name) // Drums Vol1_001.wav
//
// # Metadata Policy
//
// MetadataPolicy selects how tags are normalized on each copy:
//
//	model.PolicyStripOnly       // remove every tag, write nothing
//	model.PolicyStripAndRelabel // remove every tag, write title + album
package model
