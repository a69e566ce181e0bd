package m4

import "hds/pkg/dataset"

// Yearly series.
type Yearly struct{}

// Quarterly series.
type Quarterly struct{}

// Monthly series.
type Monthly struct{}

// Weekly series.
type Weekly struct{}

// Daily series.
type Daily struct{}

// Hourly series.
type Hourly struct{}

func (Yearly) Seasonality() int { return 1 }
func (Yearly) Horizon() int     { return 6 }
func (Yearly) Freq() string     { return "Y" }
func (Yearly) NumSeries() int   { return 23000 }

func (Quarterly) Seasonality() int { return 4 }
func (Quarterly) Horizon() int     { return 8 }
func (Quarterly) Freq() string     { return "Q" }
func (Quarterly) NumSeries() int   { return 24000 }

func (Monthly) Seasonality() int { return 12 }
func (Monthly) Horizon() int     { return 18 }
func (Monthly) Freq() string     { return "M" }
func (Monthly) NumSeries() int   { return 48000 }

func (Weekly) Seasonality() int { return 1 }
func (Weekly) Horizon() int     { return 13 }
func (Weekly) Freq() string     { return "W" }
func (Weekly) NumSeries() int   { return 359 }

func (Daily) Seasonality() int { return 1 }
func (Daily) Horizon() int     { return 14 }
func (Daily) Freq() string     { return "D" }
func (Daily) NumSeries() int   { return 4227 }

func (Hourly) Seasonality() int { return 24 }
func (Hourly) Horizon() int     { return 48 }
func (Hourly) Freq() string     { return "H" }
func (Hourly) NumSeries() int   { return 414 }

// Info lists the M4 groups in the competition's order.
var Info = dataset.NewInfo[dataset.Group](Yearly{}, Quarterly{}, Monthly{}, Weekly{}, Daily{}, Hourly{})
