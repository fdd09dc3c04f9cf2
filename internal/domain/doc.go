// Package domain contains the core entities of the drill system:
// pool-owned content items, per-user review assignments, learner
// profiles, and the tag vocabularies that anchor generation. It has no
// dependencies on storage, transport, or the generation provider.
package domain
