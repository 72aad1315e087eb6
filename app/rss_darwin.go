package app

// Maxrss is reported in bytes on darwin.
const rssUnit = 1
