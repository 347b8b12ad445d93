package exifmeta

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const sniffLen = 512

var (
	tiffLittleEndian = []byte("II*\x00")
	tiffBigEndian    = []byte("MM\x00*")
	exifHeader       = []byte("Exif\x00\x00")
	pngSignature     = []byte("\x89PNG\r\n\x1a\n")
)

// sniff classifies the container from the leading bytes. TIFF (and the
// TIFF-based CR2/NEF raws) are matched by magic; JPEG and PNG by
// http.DetectContentType.
func sniff(head []byte) (Container, string) {
	if bytes.HasPrefix(head, tiffLittleEndian) || bytes.HasPrefix(head, tiffBigEndian) {
		return ContainerTIFF, "image/tiff"
	}
	detected := http.DetectContentType(head)
	switch detected {
	case "image/jpeg":
		return ContainerJPEG, detected
	case "image/png":
		return ContainerPNG, detected
	default:
		return "", detected
	}
}

var errTruncated = errors.New("truncated container")

// findJPEGExif walks JPEG marker segments up to the start of scan and
// returns the first APP1 payload that carries an Exif header (header
// included). A nil payload with no error means the file has no EXIF.
func findJPEGExif(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	var soi [2]byte
	if _, err := io.ReadFull(br, soi[:]); err != nil || soi[0] != 0xFF || soi[1] != 0xD8 {
		return nil, fmt.Errorf("missing start of image marker")
	}
	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, errTruncated
		}
		if b != 0xFF {
			return nil, fmt.Errorf("expected marker, found 0x%02x", b)
		}
		marker, err := br.ReadByte()
		for err == nil && marker == 0xFF {
			marker, err = br.ReadByte()
		}
		if err != nil {
			return nil, errTruncated
		}
		switch {
		case marker == 0xD9 || marker == 0xDA:
			// End of image or start of scan; metadata segments come before either.
			return nil, nil
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			continue
		}
		var lenBuf [2]byte
		if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
			return nil, errTruncated
		}
		length := int(binary.BigEndian.Uint16(lenBuf[:]))
		if length < 2 {
			return nil, fmt.Errorf("invalid segment length %d", length)
		}
		if marker != 0xE1 {
			if _, err := br.Discard(length - 2); err != nil {
				return nil, errTruncated
			}
			continue
		}
		payload := make([]byte, length-2)
		if _, err := io.ReadFull(br, payload); err != nil {
			return nil, errTruncated
		}
		if bytes.HasPrefix(payload, exifHeader) {
			return payload, nil
		}
	}
}

// maxPNGChunk bounds the chunk size read into memory.
const maxPNGChunk = 16 << 20

// findPNGExif walks PNG chunks and returns the raw TIFF stream of the eXIf
// chunk, or nil when the file has none.
func findPNGExif(r io.ReadSeeker) ([]byte, error) {
	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(r, sig); err != nil || !bytes.Equal(sig, pngSignature) {
		return nil, fmt.Errorf("missing png signature")
	}
	var header [8]byte
	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, errTruncated
		}
		length := binary.BigEndian.Uint32(header[:4])
		kind := string(header[4:])
		switch kind {
		case "IEND":
			return nil, nil
		case "eXIf":
			if length > maxPNGChunk {
				return nil, fmt.Errorf("eXIf chunk too large (%d bytes)", length)
			}
			data := make([]byte, length)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, errTruncated
			}
			return data, nil
		}
		// Skip data and CRC.
		if _, err := r.Seek(int64(length)+4, io.SeekCurrent); err != nil {
			return nil, errTruncated
		}
	}
}
