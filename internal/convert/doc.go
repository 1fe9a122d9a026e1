// Package convert rewrites a single file from its source encoding to UTF-8.
//
// [Convert] follows a read, decode, replace protocol:
//
//   - The path is resolved through symlinks; anything other than a regular
//     file is reported unreadable without being opened.
//   - A non-blocking advisory lock is taken on the real file so that two
//     runs never rewrite the same file at once.
//   - The whole file is read and decoded strictly. A decode failure leaves
//     the file untouched.
//   - The UTF-8 bytes are written to a temporary file in the same directory,
//     synced, given the original permission bits, and renamed over the
//     original. A crash at any point leaves either the old or the new
//     content on disk, never a truncated file.
//
// Every outcome is returned as a [Result]; Convert never panics on I/O
// errors and never affects other files.
package convert
