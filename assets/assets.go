package assets

import _ "embed"

// DefaultSeed is the demo book loaded by the memory backend when no seed
// file is configured.
//
//go:embed seed.yaml
var DefaultSeed []byte
