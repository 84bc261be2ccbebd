// Package authenticateuser verifies credentials and stamps the last login.
package authenticateuser
