package dataset

import (
	"riskhypo/domain/core"
	domainDataset "riskhypo/domain/dataset"
)

// GetFeaturesAndTarget splits a dataset into the target column and every other column
func GetFeaturesAndTarget(ds *domainDataset.Dataset, target string) (*domainDataset.Dataset, *domainDataset.Column, error) {
	col, ok := ds.Column(target)
	if !ok {
		return nil, nil, core.NewColumnNotFoundError(target)
	}
	return ds.Without(target), col, nil
}
