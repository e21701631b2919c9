package wallet

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// AddressQR renders the stored address as a PNG QR code.
func (s *Service) AddressQR(size int) ([]byte, error) {
	address, err := s.Address()
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = qrSize
	}
	return qrCodePNG(address, size)
}

func qrCodePNG(address string, size int) ([]byte, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}

// qrCodeBase64 generates QR code of address in base64
func qrCodeBase64(address string) (string, error) {
	png, err := qrCodePNG(address, qrSize)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
