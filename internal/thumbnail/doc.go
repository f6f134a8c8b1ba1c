// Package thumbnail produces the low-resolution WebP asset for each published
// photo by invoking an external image tool (ImageMagick or cwebp).
//
// The tool is a black box: this package only builds its argument list, runs
// it with a timeout, removes partial output on failure, and optionally decodes
// the result to confirm it is a readable image. Tests replace the command
// runner through SetRunnerForTests.
package thumbnail
