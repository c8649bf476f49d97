package services_test

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunchdesk/internal/services"
	"lunchdesk/internal/services/servicestest"
)

var orderIDPattern = regexp.MustCompile(`^LD-[0-9A-Z]+-[0-9A-Z]{4}-[0-9A-Z]{4}$`)

func TestGenerateOrderIDShape(t *testing.T) {
	now := time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)

	id, err := services.GenerateOrderID(now, "user-1", bytes.NewReader([]byte{0, 0, 0, 0}))
	require.NoError(t, err)

	assert.Regexp(t, orderIDPattern, id)
	parts := strings.Split(id, "-")
	assert.Equal(t, strings.ToUpper(strconv.FormatInt(now.Unix(), 36)), parts[1])
	assert.Equal(t, "0000", parts[3])
}

func TestGenerateOrderIDIsDeterministicForSameInputs(t *testing.T) {
	now := time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)
	random := []byte{0xde, 0xad, 0xbe, 0xef}

	first, err := services.GenerateOrderID(now, "user-1", bytes.NewReader(random))
	require.NoError(t, err)
	second, err := services.GenerateOrderID(now, "user-1", bytes.NewReader(random))
	require.NoError(t, err)
	other, err := services.GenerateOrderID(now, "user-2", bytes.NewReader(random))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestGenerateOrderIDVariesWithRandomSource(t *testing.T) {
	now := time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)
	random := &servicestest.CountingReader{}

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := services.GenerateOrderID(now, "user-1", random)
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerateOrderIDFailsOnShortRandom(t *testing.T) {
	_, err := services.GenerateOrderID(time.Now(), "user-1", bytes.NewReader([]byte{1}))
	require.Error(t, err)
}

func TestGenerateOrderIDSortsByCreationTime(t *testing.T) {
	earlier := time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)

	a, err := services.GenerateOrderID(earlier, "user-1", bytes.NewReader([]byte{9, 9, 9, 9}))
	require.NoError(t, err)
	b, err := services.GenerateOrderID(later, "user-1", bytes.NewReader([]byte{0, 0, 0, 0}))
	require.NoError(t, err)

	assert.Less(t, a, b)
}
