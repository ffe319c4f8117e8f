package storage

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"io"
)

const compressionThreshold = 1024 // 1KB

// compressText gzips text at or above the threshold and returns it base64
// encoded. Shorter text is returned as is with compressed set to false.
func compressText(text string) (string, bool, error) {
	if len(text) < compressionThreshold {
		return text, false, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(text)); err != nil {
		return "", false, err
	}
	if err := zw.Close(); err != nil {
		return "", false, err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), true, nil
}

func decompressText(encoded string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}

	zr, err := gzip.NewReader(bytes.NewReader(decoded))
	if err != nil {
		return "", err
	}
	defer zr.Close()

	uncompressed, err := io.ReadAll(zr)
	if err != nil {
		return "", err
	}
	return string(uncompressed), nil
}
