package core

// DataSizeLimit is the hard ceiling on the length of container data. The
// ceiling keeps the Loaded payload from growing without bound.
const DataSizeLimit = 10000

// Validate checks container data. It is a pure function; absence of an error
// is success. Empty data fails with EmptyDataError and data longer than
// DataSizeLimit fails with TooLongError.
func Validate(data string) error {
	if len(data) == 0 {
		return EmptyDataError{}
	}

	if len(data) > DataSizeLimit {
		return TooLongError{Length: len(data)}
	}

	return nil
}
