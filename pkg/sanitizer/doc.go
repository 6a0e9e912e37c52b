// Package sanitizer normalizes free-form input before validation and storage.
//
// All functions are idempotent. Invalid input is returned as an empty string
// rather than an error so the validator reports a single, consistent message.
//
// Normalization includes:
//   - Phone numbers: E.164 via libphonenumber, parsed against the tenant's default region
//   - Names and addresses: collapse whitespace, trim
//   - Notes: drop control characters, trim
//   - Subdomains: lowercase, letters, digits and hyphens only
//   - Timezones: trim, collapse repeated slashes
package sanitizer
