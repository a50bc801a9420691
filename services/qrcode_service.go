// services/qrcode_service.go
package services

import (
	"errors"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QRCodeEncoder matches qrcode.Encode so tests can swap the encoder out.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

var (
	errInvalidQRSize = errors.New("invalid size: must be positive")
	errEmptyJoinURL  = errors.New("join URL is required")
)

// JoinURL is the participant-facing link for a session.
func JoinURL(applicationURL, sessionCode string) string {
	return strings.TrimRight(applicationURL, "/") + "/session/" + sessionCode
}

// GenerateJoinQRCode encodes joinURL as a square PNG of the given size.
func GenerateJoinQRCode(joinURL string, size int, encoder QRCodeEncoder) ([]byte, error) {
	if size <= 0 {
		return nil, errInvalidQRSize
	}
	if joinURL == "" {
		return nil, errEmptyJoinURL
	}
	if encoder == nil {
		encoder = qrcode.Encode
	}

	png, err := encoder(joinURL, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
