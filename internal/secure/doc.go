// Package secure provides memory-safe handling of credential values.
//
// It wraps the memguard library so that secret values passing through
// the migration and submission paths are encrypted at rest in process
// memory (XSalsa20Poly1305), protected from swapping via mlock, and
// wiped on destruction. Core dumps and swap files therefore never
// contain plaintext credentials.
//
// It does not protect against an attacker with root access to the
// running process or hardware-level attacks.
package secure
