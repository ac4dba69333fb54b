package baseline

import _ "embed"

// defaultDataset ships a small reference dataset so the pipeline is runnable
// end to end without external data. Production deployments load their own
// versioned dataset via LoadFile.
//
//go:embed default_dataset.yaml
var defaultDataset []byte

// Default returns a store backed by the embedded reference dataset.
func Default() (*Store, error) {
	return Load(defaultDataset)
}
