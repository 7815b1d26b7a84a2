// Package session manages the authenticated browser session used for
// posting. Cookies captured after a successful login are persisted with
// restricted permissions and replayed on the next launch; when replay fails
// the auth probe, the manager opens the login page and blocks on a human
// completing the login before continuing.
package session
