//go:build windows

package launcher

import "golang.org/x/sys/windows"

const cpUTF8 = 65001

var (
	kernel32            = windows.NewLazySystemDLL("kernel32.dll")
	procSetConsoleCP    = kernel32.NewProc("SetConsoleCP")
	procSetConsoleOutCP = kernel32.NewProc("SetConsoleOutputCP")
)

// ConfigureConsole switches the attached console to UTF-8 so the Chinese
// status text renders instead of mojibake. Failures are ignored: there is
// no console to configure when the binary runs redirected.
func ConfigureConsole() {
	procSetConsoleCP.Call(uintptr(cpUTF8))
	procSetConsoleOutCP.Call(uintptr(cpUTF8))
}
