// Package settlefine records the payment of a frozen fine.
package settlefine
