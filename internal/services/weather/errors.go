package weather

import (
	"github.com/pkg/errors"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/repositories"
)

var (
	// ErrFetchFailure matches every *FetchFailure.
	ErrFetchFailure = errors.New("fetch failure")
	// ErrDiscarded is returned when the caller went away before the load
	// could be committed.
	ErrDiscarded = errors.New("load discarded")
)

// FetchFailure is a failed city list or per-city request. CityID is empty
// for the city list.
type FetchFailure struct {
	CityID     models.CityID
	StatusCode int
	Message    string
	cause      error
}

func newFetchFailure(id models.CityID, message string, cause error) *FetchFailure {
	f := &FetchFailure{
		CityID:  id,
		Message: message,
		cause:   cause,
	}

	var statusErr *repositories.StatusError
	if errors.As(cause, &statusErr) {
		f.StatusCode = statusErr.StatusCode
	}

	return f
}

func (f *FetchFailure) Error() string {
	return f.Message
}

func (f *FetchFailure) Unwrap() error {
	return f.cause
}

func (f *FetchFailure) Is(target error) bool {
	return target == ErrFetchFailure
}

// Rejected reports whether err is a fetch failure the backend answered with a
// 4xx status. Server errors and transport failures are not rejections.
func Rejected(err error) bool {
	var f *FetchFailure
	return errors.As(err, &f) && f.StatusCode >= 400 && f.StatusCode < 500
}
