// Package cache stores model responses on disk so repeated runs over the
// same context do not pay for the same completion twice.
//
// Keys are SHA-256 hashes of the provider, model, prompts and sampling
// settings (see [HashKey]). Each entry records its creation time; entries
// older than the configured TTL are ignored on read and reported as expired
// by [Cache.GetStats]. Prompts reach the cache only after secret redaction.
package cache
