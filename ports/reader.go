package ports

import (
	"context"

	"riskhypo/domain/core"
	"riskhypo/domain/dataset"
)

// LoadedDataset is an ingested dataset plus its provenance
type LoadedDataset struct {
	Dataset     *dataset.Dataset
	Fingerprint core.Hash
	Source      string
}

// DatasetReader loads the input dataset wholesale. Structural problems with
// the input surface as INGESTION_FAILED errors.
type DatasetReader interface {
	Load(ctx context.Context) (*LoadedDataset, error)
}
