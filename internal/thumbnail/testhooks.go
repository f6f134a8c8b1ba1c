package thumbnail

// SetRunnerForTests overrides the external command runner during tests.
func SetRunnerForTests(fn CommandRunner) func() {
	previous := runCommand
	runCommand = fn
	return func() {
		runCommand = previous
	}
}
