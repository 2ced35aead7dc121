package chrono

import "time"

// TimeAPI is what anything depending on the current time should use.
type TimeAPI interface {
	Now() time.Time
	Location() *time.Location
}

// StandardImpl reads the wall clock in the portal's timezone.
type StandardImpl struct {
	location *time.Location
}

func NewStandardImpl() (StandardImpl, error) {
	location, err := time.LoadLocation("Europe/London")
	if err != nil {
		return StandardImpl{}, err
	}
	return StandardImpl{location: location}, nil
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// FixedImpl always returns the same time.
type FixedImpl struct {
	Time time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.Time
}

func (f FixedImpl) Location() *time.Location {
	return f.Time.Location()
}
