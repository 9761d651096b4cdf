package tui

import (
	"os/exec"
	"runtime"
)

// SettingsURL is the page where users copy their session key and org id.
const SettingsURL = "https://claude.ai/settings/usage"

// OpenSettingsPage opens the usage settings page in the default browser.
func OpenSettingsPage() error {
	return openBrowser(SettingsURL)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	return cmd.Start()
}
