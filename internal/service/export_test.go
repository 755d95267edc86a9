package service

// Exported internals for external tests.
var (
	IntervalToFormat = intervalToFormat
	SlicePage        = slicePage
	Median           = median
	FloatTrunc       = floatTrunc
)
