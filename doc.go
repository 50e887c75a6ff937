// Package cryptutil provides small cryptographic utilities built on
// established primitives: keyfile management, whole-file authenticated
// encryption, password hashing, and relaying one-time passwords to the
// Yubico verification service.
//
// # Keyfiles
//
// A keyfile is any path ending in ".key" whose contents are a 32-byte key
// encoded as URL-safe base64, the format produced by Fernet:
//
//	if err := cryptutil.GenerateKeyfile("backup.key"); err != nil {
//	    return err
//	}
//	key, err := cryptutil.LoadKeyfile("backup.key")
//
// Loading a keyfile that does not exist creates it empty. The empty key is
// then rejected by the cipher with a *KeyFormatError.
//
// # File Encryption
//
// EncryptFile and DecryptFile read the source in full, encrypt or decrypt
// it, and replace the destination:
//
//	err = cryptutil.EncryptFile("notes.txt", "notes.txt.enc", key)
//	err = cryptutil.DecryptFile("notes.txt.enc", "notes.txt", key)
//
// The default envelope is a Fernet token, interchangeable with tokens from
// Python's cryptography package. A FileCipher can instead produce AEAD
// envelopes (AES-256-GCM or ChaCha20-Poly1305) from the same keyfile, and
// can operate on any absfs.Filer:
//
//	fc, err := cryptutil.NewFileCipher(fs, cryptutil.CipherConfig{
//	    Suite:  cryptutil.CipherChaCha20Poly1305,
//	    MaxAge: 24 * time.Hour,
//	})
//
// Decryption fails with an *AuthenticationError when the envelope was
// altered, truncated, encrypted under another key, or is older than MaxAge.
// The destination is not touched in that case.
//
// # Password Hashing
//
// HashPassword produces passlib-compatible records,
// "$pbkdf2-sha256$30000$<salt>$<digest>" by default. VerifyPassword takes
// the scheme, salt and rounds from the record, so it also accepts
// pbkdf2-sha512, pbkdf2 (SHA-1) and argon2id records:
//
//	record, err := cryptutil.HashPassword("hunter2")
//	ok, err := cryptutil.VerifyPassword("hunter2", record)
//
// # One-Time Passwords
//
// ValidateOTP forwards an OTP to https://api.yubico.com/wsapi/2.0/verify
// and returns the response fields as a map. The response signature, status
// and nonce are not checked locally unless RelayConfig.VerifyNonce is set;
// callers must inspect the "status" field themselves.
//
// # Concurrency
//
// All operations are synchronous. Nothing locks files: two calls writing
// the same destination race and the last writer wins.
package cryptutil
