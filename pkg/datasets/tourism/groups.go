package tourism

import "hds/pkg/dataset"

type Yearly struct{}

type Quarterly struct{}

type Monthly struct{}

func (Yearly) Seasonality() int { return 1 }
func (Yearly) Horizon() int     { return 4 }
func (Yearly) Freq() string     { return "Y" }
func (Yearly) NumSeries() int   { return 518 }

func (Quarterly) Seasonality() int { return 4 }
func (Quarterly) Horizon() int     { return 8 }
func (Quarterly) Freq() string     { return "Q" }
func (Quarterly) NumSeries() int   { return 427 }

func (Monthly) Seasonality() int { return 12 }
func (Monthly) Horizon() int     { return 24 }
func (Monthly) Freq() string     { return "M" }
func (Monthly) NumSeries() int   { return 366 }

var Info = dataset.NewInfo[dataset.Group](Yearly{}, Quarterly{}, Monthly{})
