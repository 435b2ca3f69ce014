// Package google mints short-lived access credentials for Google APIs from a
// service-account key file.
//
// A ServiceAccountProvider re-reads the key and performs one JWT-bearer token
// exchange per Acquire call. Tokens are never cached or persisted, so every
// dispatched request carries a credential minted for it alone.
package google
