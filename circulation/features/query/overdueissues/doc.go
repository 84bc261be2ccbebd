// Package overdueissues lists active loans whose due date has passed.
package overdueissues
