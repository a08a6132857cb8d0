package common

import (
	"github.com/ternarybob/banner"
)

// AppName is the display name used in the banner and the HTTP server header.
const AppName = "Pix Intel"

// PrintBanner displays the application banner
func PrintBanner(version string) {
	banner.PrintSimple(AppName, version)
}
