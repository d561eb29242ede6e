// Package password provides Argon2id hashing in PHC string format for the
// member operations. Verification reads cost parameters out of the stored
// hash, so parameter upgrades roll forward without invalidating existing
// credentials.
package password
