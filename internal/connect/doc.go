// Package connect drives browser-based platform connection attempts.
//
// A Controller launches the system browser at the backend's authorization
// URL, stands up a loopback callback server, and races two watches: the
// callback landing locally and a backend status poll. Whichever concludes
// first resolves the attempt; the session guarantees exactly one resolution
// and tears down every timer, ticker, and server handle it owns.
package connect
