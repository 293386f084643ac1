package mocks

import (
	"context"

	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
)

// RecordingAnalytics entrega cada SearchRecord por un canal, para poder
// esperar el registro asíncrono desde los tests.
type RecordingAnalytics struct {
	Records chan listingDomain.SearchRecord
	Err     error
}

func NewRecordingAnalytics() *RecordingAnalytics {
	return &RecordingAnalytics{Records: make(chan listingDomain.SearchRecord, 16)}
}

func (a *RecordingAnalytics) LogSearch(ctx context.Context, rec listingDomain.SearchRecord) error {
	select {
	case a.Records <- rec:
	default:
	}
	return a.Err
}
