package testkit

import (
	"context"
	"path/filepath"

	"riskhypo/adapters/tabular"
	"riskhypo/domain/dataset"
	"riskhypo/ports"
)

// TestKit writes synthetic policy files into a scratch directory and loads them back
type TestKit struct {
	dir    string
	config InsuranceGeneratorConfig
}

// NewTestKit creates a kit writing into dir
func NewTestKit(dir string, config InsuranceGeneratorConfig) *TestKit {
	return &TestKit{dir: dir, config: config}
}

// PolicyFile generates a fresh policy file and returns its path
func (k *TestKit) PolicyFile(name string) (string, error) {
	path := filepath.Join(k.dir, name)
	if err := NewInsuranceDataGenerator(k.config).WriteToFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// Reader returns a tabular reader for path configured to match the generator
func (k *TestKit) Reader(path string) ports.DatasetReader {
	cfg := tabular.DefaultReaderConfig()
	cfg.FilePath = path
	cfg.Delimiter = k.config.Delimiter
	if cfg.Delimiter == 0 {
		cfg.Delimiter = '|'
	}
	return tabular.NewDataReader(cfg, nil)
}

// PolicyDataset generates, writes and loads a policy dataset
func (k *TestKit) PolicyDataset(ctx context.Context) (*dataset.Dataset, error) {
	path, err := k.PolicyFile("policies.txt")
	if err != nil {
		return nil, err
	}
	loaded, err := k.Reader(path).Load(ctx)
	if err != nil {
		return nil, err
	}
	return loaded.Dataset, nil
}
