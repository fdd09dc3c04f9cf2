// Package generation defines the boundary between the session composer
// and the drill generation provider. The Generator interface is the
// contract; providers (Gemini, test fakes) live behind it, and the
// fallback synthesizer covers for all of them when they fail.
package generation
