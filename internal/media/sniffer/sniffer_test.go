package sniffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectHead(t *testing.T) {
	cases := []struct {
		name string
		head []byte
		want MediaType
		mime string
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, TypeJPEG, "image/jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0}, TypePNG, "image/png"},
		{"gif87", []byte("GIF87a......"), TypeGIF, "image/gif"},
		{"gif89", []byte("GIF89a......"), TypeGIF, "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), TypeWEBP, "image/webp"},
		{"avif", []byte("\x00\x00\x00\x1cftypavifmif1"), TypeAVIF, "image/avif"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectHead(tc.head)
			require.NoError(t, err)
			require.Equal(t, tc.want, got.Type)
			require.Equal(t, tc.mime, got.MIME)
		})
	}
}

func TestDetectHeadRejectsUnknownBytes(t *testing.T) {
	for _, head := range [][]byte{
		nil,
		[]byte("<svg xmlns="),
		[]byte("%PDF-1.7"),
		[]byte{0x00, 0x01},
	} {
		_, err := DetectHead(head)
		require.ErrorIs(t, err, ErrUnsupportedType)
	}
}

func TestNormalizeContentType(t *testing.T) {
	require.Equal(t, "image/png", NormalizeContentType("image/png; charset=binary"))
	require.Equal(t, "image/jpeg", NormalizeContentType("  image/jpeg  "))
	require.Equal(t, "image/webp", NormalizeContentType("image/webp"))
}
