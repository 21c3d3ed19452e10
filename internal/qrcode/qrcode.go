package qrcode

import (
	"fmt"
	"net/url"

	qr "github.com/skip2/go-qrcode"
)

// Size is the edge length of generated images in pixels.
const Size = 256

// Generate creates a QR code PNG image for the given URL.
func Generate(link string) ([]byte, error) {
	return qr.Encode(link, qr.Medium, Size)
}

// DeviceURL is the page a phone opens to enter scores for a table.
func DeviceURL(host, tableID string) string {
	return fmt.Sprintf("http://%s/index.html?table=%s", host, url.QueryEscape(tableID))
}
