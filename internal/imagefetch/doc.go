// Package imagefetch turns an image manifest into local assets.
//
// Materialize fetches every manifest entry concurrently and fails as a
// whole when any fetch fails. Fetched bytes are either inlined as data
// URIs or parked in a Store behind transient blob handles that a
// deliverer later resolves.
package imagefetch
