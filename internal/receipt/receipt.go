// Package receipt derives the deterministic confirmation token encoded into
// the scannable booking artifact.
package receipt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"roombook/internal/models"
)

const (
	prefix  = "ROOMBOOK"
	version = "v1"

	// digestLen is the number of hex characters of the email digest kept in
	// the token. The raw address never appears in the artifact.
	digestLen = 12
)

// Token is a parsed receipt.
type Token struct {
	BookingID   int64
	RoomName    string
	Date        string
	Interval    string
	EmailDigest string
}

// Generate derives the receipt token. Stable: same inputs produce the same
// token, and the booking id keeps tokens unique. No I/O.
func Generate(bookingID int64, roomName string, date time.Time, iv models.Interval, email string) string {
	return strings.Join([]string{
		prefix,
		version,
		strconv.FormatInt(bookingID, 10),
		sanitize(roomName),
		date.Format("2006-01-02"),
		iv.String(),
		EmailDigest(email),
	}, ":")
}

// EmailDigest returns the short hex digest standing in for the user email.
func EmailDigest(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])[:digestLen]
}

// Parse validates a token and splits it into fields. The interval field
// "HH:MM-HH:MM" contributes two inner separators, and room names are
// sanitized, so a valid token always splits into exactly nine parts.
func Parse(token string) (*Token, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 9 {
		return nil, fmt.Errorf("receipt: malformed token with %d fields", len(parts))
	}
	if parts[0] != prefix {
		return nil, fmt.Errorf("receipt: unknown prefix %q", parts[0])
	}
	if parts[1] != version {
		return nil, fmt.Errorf("receipt: unsupported version %q", parts[1])
	}

	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("receipt: bad booking id %q", parts[2])
	}
	if _, err := time.Parse("2006-01-02", parts[4]); err != nil {
		return nil, fmt.Errorf("receipt: bad date %q", parts[4])
	}

	interval := strings.Join(parts[5:8], ":")
	start, end, ok := strings.Cut(interval, "-")
	if !ok {
		return nil, fmt.Errorf("receipt: bad interval %q", interval)
	}
	if _, err := models.ParseClock(start); err != nil {
		return nil, fmt.Errorf("receipt: bad interval %q", interval)
	}
	if _, err := models.ParseClock(end); err != nil {
		return nil, fmt.Errorf("receipt: bad interval %q", interval)
	}

	digest := parts[8]
	if len(digest) != digestLen {
		return nil, fmt.Errorf("receipt: bad email digest %q", digest)
	}

	return &Token{
		BookingID:   id,
		RoomName:    parts[3],
		Date:        parts[4],
		Interval:    interval,
		EmailDigest: digest,
	}, nil
}

// sanitize strips the field separator from free-form names so tokens stay
// parseable.
func sanitize(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ":", "_")
}
