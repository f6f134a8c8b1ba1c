// Package textutil provides the text rules photoreel applies to album names.
//
// FolderName turns an operator-entered display name into the stable,
// filesystem-safe identifier used for the album directory, asset filenames,
// and manifest entries. DisplayTitle suggests a display name for a raw
// directory, and Suggest offers a "did you mean" candidate when an operator
// mistypes an album folder.
package textutil
