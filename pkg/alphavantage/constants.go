package alphavantage

// Function is the value of the query's "function" parameter.
type Function string

// OutputSize selects between the latest 100 points and the full history.
type OutputSize string

const (
	FunctionTimeSeriesDaily Function = "TIME_SERIES_DAILY"

	OutputSizeCompact OutputSize = "compact"
	OutputSizeFull    OutputSize = "full"
)

// DateLayout is the provider's date key format.
const DateLayout = "2006-01-02"

// Field keys inside one daily record.
const (
	FieldOpen   = "1. open"
	FieldHigh   = "2. high"
	FieldLow    = "3. low"
	FieldClose  = "4. close"
	FieldVolume = "5. volume"
)
