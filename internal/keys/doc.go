// Package keys maps Mixxx musical key ids onto the display strings written to
// the Rekordbox Tonality attribute.
//
// Mixxx stores keys as integers 1..24 (0 means no key). Two notations are
// supported: Lancelot wheel codes ("8A") and musical names ("Am").
package keys
