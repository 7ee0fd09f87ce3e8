package geopackage

import (
	"encoding/binary"
	"fmt"
	"math"

	"aemcore/pkg/tables"
)

// GeoPackage geometry blobs are a fixed "GP" header (version, flags,
// srs_id, optional envelope) followed by an OGC WKB geometry.

const (
	wkbPoint      = 1
	wkbLineString = 2
	wkbPolygon    = 3
)

// envelopeSizes maps the header envelope indicator (flag bits 1-3) to the
// number of envelope bytes to skip.
var envelopeSizes = map[byte]int{0: 0, 1: 32, 2: 48, 3: 48, 4: 64}

type blobReader struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

func (r *blobReader) remaining() int { return len(r.buf) - r.pos }

func (r *blobReader) byte() (byte, error) {
	if r.remaining() < 1 {
		return 0, fmt.Errorf("geometry blob truncated at offset %d", r.pos)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *blobReader) uint32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, fmt.Errorf("geometry blob truncated at offset %d", r.pos)
	}
	v := r.order.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *blobReader) float64() (float64, error) {
	if r.remaining() < 8 {
		return 0, fmt.Errorf("geometry blob truncated at offset %d", r.pos)
	}
	v := math.Float64frombits(r.order.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *blobReader) skip(n int) error {
	if r.remaining() < n {
		return fmt.Errorf("geometry blob truncated at offset %d", r.pos)
	}
	r.pos += n
	return nil
}

// decodeGeometry parses a GeoPackage geometry blob into its coordinate
// sequence. Point, LineString and Polygon (exterior ring) are supported;
// the blob's own byte-order markers are honored.
func decodeGeometry(blob []byte) ([]tables.Coord, error) {
	if len(blob) < 8 {
		return nil, fmt.Errorf("geometry blob too short (%d bytes)", len(blob))
	}
	if blob[0] != 'G' || blob[1] != 'P' {
		return nil, fmt.Errorf("geometry blob missing GP magic")
	}
	flags := blob[3]
	if flags&(1<<4) != 0 { // empty geometry flag
		return nil, nil
	}
	r := &blobReader{buf: blob, pos: 4, order: headerOrder(flags)}
	if err := r.skip(4); err != nil { // srs_id
		return nil, err
	}
	envSize, ok := envelopeSizes[(flags>>1)&0x7]
	if !ok {
		return nil, fmt.Errorf("invalid envelope indicator %d", (flags>>1)&0x7)
	}
	if err := r.skip(envSize); err != nil {
		return nil, err
	}
	return decodeWKB(r)
}

func headerOrder(flags byte) binary.ByteOrder {
	if flags&1 == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func decodeWKB(r *blobReader) ([]tables.Coord, error) {
	orderByte, err := r.byte()
	if err != nil {
		return nil, err
	}
	if orderByte == 1 {
		r.order = binary.LittleEndian
	} else {
		r.order = binary.BigEndian
	}
	rawType, err := r.uint32()
	if err != nil {
		return nil, err
	}
	// 1000-offset variants carry Z/M ordinates this store does not model.
	if rawType > wkbPolygon {
		return nil, fmt.Errorf("unsupported geometry type %d", rawType)
	}
	switch rawType {
	case wkbPoint:
		c, err := readCoord(r)
		if err != nil {
			return nil, err
		}
		return []tables.Coord{c}, nil
	case wkbLineString:
		return readRing(r)
	case wkbPolygon:
		numRings, err := r.uint32()
		if err != nil {
			return nil, err
		}
		if numRings == 0 {
			return nil, nil
		}
		// The exterior ring comes first; holes are not modeled.
		return readRing(r)
	default:
		return nil, fmt.Errorf("unsupported geometry type %d", rawType)
	}
}

func readCoord(r *blobReader) (tables.Coord, error) {
	x, err := r.float64()
	if err != nil {
		return tables.Coord{}, err
	}
	y, err := r.float64()
	if err != nil {
		return tables.Coord{}, err
	}
	return tables.Coord{X: x, Y: y}, nil
}

func readRing(r *blobReader) ([]tables.Coord, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if int(n) > r.remaining()/16 {
		return nil, fmt.Errorf("geometry blob declares %d points beyond its size", n)
	}
	coords := make([]tables.Coord, n)
	for i := range coords {
		coords[i], err = readCoord(r)
		if err != nil {
			return nil, err
		}
	}
	return coords, nil
}

// encodeGeometry renders coordinates as a little-endian GeoPackage blob
// with an XY envelope. A single coordinate encodes as a Point, a closed
// ring as a Polygon, anything else as a LineString.
func encodeGeometry(coords []tables.Coord, srsID int32) []byte {
	var buf []byte
	put32 := func(v uint32) {
		buf = binary.LittleEndian.AppendUint32(buf, v)
	}
	putF := func(f float64) {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
	}

	buf = append(buf, 'G', 'P', 0, (1<<1)|1) // version 0, XY envelope, little endian
	put32(uint32(srsID))

	minX, maxX := coords[0].X, coords[0].X
	minY, maxY := coords[0].Y, coords[0].Y
	for _, c := range coords[1:] {
		minX = math.Min(minX, c.X)
		maxX = math.Max(maxX, c.X)
		minY = math.Min(minY, c.Y)
		maxY = math.Max(maxY, c.Y)
	}
	putF(minX)
	putF(maxX)
	putF(minY)
	putF(maxY)

	buf = append(buf, 1) // WKB little endian
	closed := len(coords) >= 4 && coords[0] == coords[len(coords)-1]
	switch {
	case len(coords) == 1:
		put32(wkbPoint)
		putF(coords[0].X)
		putF(coords[0].Y)
	case closed:
		put32(wkbPolygon)
		put32(1)
		put32(uint32(len(coords)))
		for _, c := range coords {
			putF(c.X)
			putF(c.Y)
		}
	default:
		put32(wkbLineString)
		put32(uint32(len(coords)))
		for _, c := range coords {
			putF(c.X)
			putF(c.Y)
		}
	}
	return buf
}
