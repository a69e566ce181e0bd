// Package datasets is the catalog of built-in datasets.
package datasets

import (
	"fmt"
	"hds/pkg/dataset"
	"hds/pkg/datasets/m4"
	"hds/pkg/datasets/tourism"
)

// All returns every built-in dataset, in display order.
func All() []dataset.Dataset {
	return []dataset.Dataset{
		m4.New(),
		tourism.New(),
	}
}

func Names() []string {
	all := All()
	names := make([]string, 0, len(all))
	for _, d := range all {
		names = append(names, d.Name())
	}
	return names
}

// Lookup finds a dataset by name.
func Lookup(name string) (dataset.Dataset, error) {
	for _, d := range All() {
		if d.Name() == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (known: %v)", dataset.ErrUnknownDataset, name, Names())
}
