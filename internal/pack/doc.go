// Package pack turns a selection of WAV files into a sample pack folder.
//
// The Processor copies every file to <base>/<pack>_output/<pack>_<NNN>.<ext>
// in selection order and normalizes the tags of each copy:
//
//	processor := pack.NewProcessor(config.DefaultSettings(), func(e pack.ProgressEvent) {
//	    fmt.Println(e.Message)
//	})
//	result, err := processor.Process(files, "Drums Vol1", "")
//
// Failures abort the batch. Match them with errors.Is against
// model.ErrEmptyInput, model.ErrEmptyPackName and model.ErrInvalidPackName,
// or with errors.As against *FilesystemError and *TagIOError, which
// report how many files were processed before the failure.
//
// Session wraps a Processor with an incremental selection for front-ends.
package pack
