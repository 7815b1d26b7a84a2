// Package browser abstracts the real-browser automation that posting relies
// on. The Automation interface covers the handful of page interactions the
// upload flow needs; LaunchChrome backs it with chromedp. Tests substitute a
// fake Launcher so the session and posting packages never need Chrome.
package browser
