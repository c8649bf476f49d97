package services

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"strconv"
	"strings"
	"time"
)

const orderIDPrefix = "LD"

// base36x4 is the number of values four base-36 digits can hold.
const base36x4 = 36 * 36 * 36 * 36

// GenerateOrderID builds a short shareable id: a base-36 timestamp (so ids
// sort by creation second), four digits derived from the user key and four
// random digits. Storage uniqueness is still the authority.
func GenerateOrderID(now time.Time, userKey string, random io.Reader) (string, error) {
	var buf [4]byte
	if _, err := io.ReadFull(random, buf[:]); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	// 20 bits always fit in four base-36 digits.
	randomPart := binary.BigEndian.Uint32(buf[:]) >> 12

	h := fnv.New32a()
	_, _ = h.Write([]byte(userKey))
	userPart := h.Sum32() % base36x4

	return fmt.Sprintf("%s-%s-%s-%s",
		orderIDPrefix,
		base36(uint64(now.Unix())),
		padBase36(uint64(userPart)),
		padBase36(uint64(randomPart)),
	), nil
}

func base36(v uint64) string {
	return strings.ToUpper(strconv.FormatUint(v, 36))
}

func padBase36(v uint64) string {
	s := base36(v)
	if len(s) < 4 {
		s = strings.Repeat("0", 4-len(s)) + s
	}
	return s
}
