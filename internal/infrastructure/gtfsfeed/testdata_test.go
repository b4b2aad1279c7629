package gtfsfeed

import (
	"testing"

	"github.com/gtfsreview/backend/internal/infrastructure/gtfsfeed/gtfsfeedtest"
)

func sampleFeed() map[string]string {
	return gtfsfeedtest.SampleFeed()
}

func buildZip(t *testing.T, files map[string]string) []byte {
	return gtfsfeedtest.BuildZip(t, files)
}
