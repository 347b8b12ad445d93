package testsupport

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"math"
	"sort"
)

// Rational is an unsigned EXIF RATIONAL (numerator, denominator).
type Rational [2]uint32

// ExifFixture describes the tags written by the fixture encoders. Zero values
// are omitted.
type ExifFixture struct {
	Model            string
	LensModel        string
	DateTime         string // "2006:01:02 15:04:05"
	DateTimeOriginal string
	ISO              uint16
	Orientation      uint16
	FNumber          Rational
	ExposureTime     Rational
	FocalLength      Rational

	// GPS in decimal degrees; the sign selects the N/S or E/W reference.
	GPS *[2]float64
	// GPSLatDMS and GPSLonDMS override the encoded rationals when set.
	GPSLatDMS *[3]Rational
	GPSLonDMS *[3]Rational
}

const (
	tiffASCII    = 2
	tiffShort    = 3
	tiffLong     = 4
	tiffRational = 5
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

var order = binary.LittleEndian

func asciiEntry(tag uint16, value string) ifdEntry {
	data := append([]byte(value), 0)
	return ifdEntry{tag: tag, typ: tiffASCII, count: uint32(len(data)), data: data}
}

func shortEntry(tag uint16, value uint16) ifdEntry {
	data := make([]byte, 2)
	order.PutUint16(data, value)
	return ifdEntry{tag: tag, typ: tiffShort, count: 1, data: data}
}

func longEntry(tag uint16, value uint32) ifdEntry {
	data := make([]byte, 4)
	order.PutUint32(data, value)
	return ifdEntry{tag: tag, typ: tiffLong, count: 1, data: data}
}

func rationalEntry(tag uint16, values ...Rational) ifdEntry {
	data := make([]byte, 8*len(values))
	for i, v := range values {
		order.PutUint32(data[i*8:], v[0])
		order.PutUint32(data[i*8+4:], v[1])
	}
	return ifdEntry{tag: tag, typ: tiffRational, count: uint32(len(values)), data: data}
}

func ifdSize(entries []ifdEntry) uint32 {
	size := uint32(2 + 12*len(entries) + 4)
	for _, e := range entries {
		if len(e.data) > 4 {
			size += uint32(len(e.data)+1) &^ 1
		}
	}
	return size
}

// encodeIFD lays out entries at offset, with out-of-line values directly after
// the directory.
func encodeIFD(entries []ifdEntry, offset uint32) []byte {
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })
	var dir, overflow bytes.Buffer
	overflowAt := offset + uint32(2+12*len(entries)+4)

	_ = binary.Write(&dir, order, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(&dir, order, e.tag)
		_ = binary.Write(&dir, order, e.typ)
		_ = binary.Write(&dir, order, e.count)
		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			dir.Write(inline)
			continue
		}
		_ = binary.Write(&dir, order, overflowAt+uint32(overflow.Len()))
		overflow.Write(e.data)
		if overflow.Len()%2 == 1 {
			overflow.WriteByte(0)
		}
	}
	_ = binary.Write(&dir, order, uint32(0))
	return append(dir.Bytes(), overflow.Bytes()...)
}

func present(r Rational) bool { return r[0] != 0 || r[1] != 0 }

func toDMS(value float64) [3]Rational {
	value = math.Abs(value)
	deg := math.Floor(value)
	minutes := math.Floor((value - deg) * 60)
	seconds := ((value-deg)*60 - minutes) * 60
	return [3]Rational{
		{uint32(deg), 1},
		{uint32(minutes), 1},
		{uint32(math.Round(seconds * 10000)), 10000},
	}
}

// TIFFWithExif encodes a little-endian TIFF stream carrying the fixture tags.
func TIFFWithExif(f ExifFixture) []byte {
	var ifd0, exifIFD, gpsIFD []ifdEntry

	if f.Model != "" {
		ifd0 = append(ifd0, asciiEntry(0x0110, f.Model))
	}
	if f.Orientation != 0 {
		ifd0 = append(ifd0, shortEntry(0x0112, f.Orientation))
	}
	if f.DateTime != "" {
		ifd0 = append(ifd0, asciiEntry(0x0132, f.DateTime))
	}

	if present(f.ExposureTime) {
		exifIFD = append(exifIFD, rationalEntry(0x829A, f.ExposureTime))
	}
	if present(f.FNumber) {
		exifIFD = append(exifIFD, rationalEntry(0x829D, f.FNumber))
	}
	if f.ISO != 0 {
		exifIFD = append(exifIFD, shortEntry(0x8827, f.ISO))
	}
	if f.DateTimeOriginal != "" {
		exifIFD = append(exifIFD, asciiEntry(0x9003, f.DateTimeOriginal))
	}
	if present(f.FocalLength) {
		exifIFD = append(exifIFD, rationalEntry(0x920A, f.FocalLength))
	}
	if f.LensModel != "" {
		exifIFD = append(exifIFD, asciiEntry(0xA434, f.LensModel))
	}

	if f.GPS != nil || f.GPSLatDMS != nil || f.GPSLonDMS != nil {
		latRef, lonRef := "N", "E"
		var lat, lon [3]Rational
		if f.GPS != nil {
			if f.GPS[0] < 0 {
				latRef = "S"
			}
			if f.GPS[1] < 0 {
				lonRef = "W"
			}
			lat, lon = toDMS(f.GPS[0]), toDMS(f.GPS[1])
		}
		if f.GPSLatDMS != nil {
			lat = *f.GPSLatDMS
		}
		if f.GPSLonDMS != nil {
			lon = *f.GPSLonDMS
		}
		gpsIFD = append(gpsIFD,
			asciiEntry(0x0001, latRef),
			rationalEntry(0x0002, lat[:]...),
			asciiEntry(0x0003, lonRef),
			rationalEntry(0x0004, lon[:]...),
		)
	}

	// Pointer entries are fixed-size, so sizes are known before offsets.
	if len(exifIFD) > 0 {
		ifd0 = append(ifd0, longEntry(0x8769, 0))
	}
	if len(gpsIFD) > 0 {
		ifd0 = append(ifd0, longEntry(0x8825, 0))
	}
	if len(ifd0) == 0 {
		ifd0 = append(ifd0, shortEntry(0x0112, 1))
	}

	const ifd0Offset = 8
	exifOffset := ifd0Offset + ifdSize(ifd0)
	gpsOffset := exifOffset
	if len(exifIFD) > 0 {
		gpsOffset += ifdSize(exifIFD)
	}
	for i := range ifd0 {
		switch ifd0[i].tag {
		case 0x8769:
			ifd0[i] = longEntry(0x8769, exifOffset)
		case 0x8825:
			ifd0[i] = longEntry(0x8825, gpsOffset)
		}
	}

	var out bytes.Buffer
	out.WriteString("II")
	_ = binary.Write(&out, order, uint16(42))
	_ = binary.Write(&out, order, uint32(ifd0Offset))
	out.Write(encodeIFD(ifd0, ifd0Offset))
	if len(exifIFD) > 0 {
		out.Write(encodeIFD(exifIFD, exifOffset))
	}
	if len(gpsIFD) > 0 {
		out.Write(encodeIFD(gpsIFD, gpsOffset))
	}
	return out.Bytes()
}

var (
	jpegSOI  = []byte{0xFF, 0xD8}
	jpegEOI  = []byte{0xFF, 0xD9}
	jfifAPP0 = []byte{0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00}
)

func jpegSegment(marker byte, payload []byte) []byte {
	seg := []byte{0xFF, marker, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	return append(seg, payload...)
}

// JPEGWithExif wraps the fixture in a minimal JPEG with an Exif APP1 segment.
func JPEGWithExif(f ExifFixture) []byte {
	payload := append([]byte("Exif\x00\x00"), TIFFWithExif(f)...)
	var out bytes.Buffer
	out.Write(jpegSOI)
	out.Write(jfifAPP0)
	out.Write(jpegSegment(0xE1, payload))
	out.Write(jpegEOI)
	return out.Bytes()
}

// PlainJPEG is a minimal JPEG with no metadata segments.
func PlainJPEG() []byte {
	var out bytes.Buffer
	out.Write(jpegSOI)
	out.Write(jfifAPP0)
	out.Write(jpegEOI)
	return out.Bytes()
}

// CorruptExifJPEG is a JPEG whose Exif APP1 segment carries an undecodable TIFF.
func CorruptExifJPEG() []byte {
	var out bytes.Buffer
	out.Write(jpegSOI)
	out.Write(jpegSegment(0xE1, []byte("Exif\x00\x00garbage-not-a-tiff")))
	out.Write(jpegEOI)
	return out.Bytes()
}

func pngChunk(kind string, data []byte) []byte {
	var out bytes.Buffer
	_ = binary.Write(&out, binary.BigEndian, uint32(len(data)))
	out.WriteString(kind)
	out.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte(kind))
	crc.Write(data)
	_ = binary.Write(&out, binary.BigEndian, crc.Sum32())
	return out.Bytes()
}

// PNGWithExif builds a 1x1 PNG skeleton with an eXIf chunk. A nil fixture
// omits the chunk.
func PNGWithExif(f *ExifFixture) []byte {
	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")
	ihdr := []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}
	out.Write(pngChunk("IHDR", ihdr))
	if f != nil {
		out.Write(pngChunk("eXIf", TIFFWithExif(*f)))
	}
	out.Write(pngChunk("IEND", nil))
	return out.Bytes()
}
