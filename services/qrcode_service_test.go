// file: services/qrcode_service_test.go
package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock encoder function (successful)
func mockQRCodeEncoderSuccess(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	return []byte("qr:" + content), nil
}

// Mock encoder function (failure)
func mockQRCodeEncoderFailure(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	return nil, errors.New("QR code generation failed")
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/session/482913", JoinURL("http://localhost:8080/", "482913"))
	assert.Equal(t, "https://polls.example.com/session/100000", JoinURL("https://polls.example.com", "100000"))
}

func TestGenerateJoinQRCode_Success(t *testing.T) {
	data, err := GenerateJoinQRCode("http://localhost:8080/session/482913", 256, mockQRCodeEncoderSuccess)

	assert.NoError(t, err)
	assert.Equal(t, "qr:http://localhost:8080/session/482913", string(data))
}

func TestGenerateJoinQRCode_InvalidSize(t *testing.T) {
	data, err := GenerateJoinQRCode("http://localhost:8080/session/482913", -100, mockQRCodeEncoderSuccess)

	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, "invalid size: must be positive", err.Error())
}

func TestGenerateJoinQRCode_EmptyURL(t *testing.T) {
	_, err := GenerateJoinQRCode("", 256, mockQRCodeEncoderSuccess)
	assert.Error(t, err)
}

func TestGenerateJoinQRCode_EncoderFails(t *testing.T) {
	data, err := GenerateJoinQRCode("http://localhost:8080/session/482913", 256, mockQRCodeEncoderFailure)

	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, "QR code generation failed", err.Error())
}

// the real encoder produces a PNG
func TestGenerateJoinQRCode_DefaultEncoder(t *testing.T) {
	data, err := GenerateJoinQRCode("http://localhost:8080/session/482913", 128, nil)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}
