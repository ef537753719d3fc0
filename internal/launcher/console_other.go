//go:build !windows

package launcher

// ConfigureConsole is a no-op outside Windows; other platforms' terminals
// are already UTF-8.
func ConfigureConsole() {}
