//go:build unix && !darwin

package app

// Maxrss is reported in kilobytes.
const rssUnit = 1024
