package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCount(t *testing.T) {
	count, err := parseCount("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)

	_, err = parseCount("twelve")
	assert.Error(t, err)

	_, err = parseCount("-1")
	assert.Error(t, err)
}

func TestStoredOrderID(t *testing.T) {
	assert.Equal(t, "", storedOrderID(pendingValue))
	assert.Equal(t, "0b7c", storedOrderID("0b7c"))
}

func TestIdempotencyKeyIsNamespaced(t *testing.T) {
	assert.Equal(t, "idempotency:open_order:abc", idempotencyKey("abc"))
}

func TestInitializeRejectsBadURL(t *testing.T) {
	_, err := Initialize("not a url", time.Minute)
	assert.Error(t, err)
}

func TestOfferLatestKeepsNewestCount(t *testing.T) {
	out := make(chan int64, 1)
	offerLatest(out, 3)
	offerLatest(out, 5)
	offerLatest(out, 2)

	require.Len(t, out, 1)
	assert.Equal(t, int64(2), <-out)
}
