package visualization

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenBrowser opens url in the user's default browser.
func OpenBrowser(url string) error {
	return browserCommand(runtime.GOOS, url).Start()
}

func browserCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", url)
	case "windows":
		return exec.Command("cmd", "/c", "start", url)
	case "linux":
		return exec.Command("xdg-open", url)
	default:
		return exec.Command("false", fmt.Sprintf("unsupported platform: %s", goos))
	}
}
