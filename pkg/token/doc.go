// Package token provides random identifier generation for SessionLab.
//
// Two formats are produced:
//
//   - Generate: 32 bytes from crypto/rand, Base64 RawURL encoded (43 chars).
//     Used for hardened session IDs.
//   - GenerateHex: n bytes from crypto/rand, hex encoded (2n chars).
//     Used for the short session IDs of the vulnerable app.
//
// GenerateBytes returns raw random bytes, used for password salts.
package token
