package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/goroom/pkg/geometry"
)

const (
	headerSize   = 80
	facetSize    = 50
	asciiKeyword = "solid"
)

// Parse reads an STL file into a non-indexed mesh.
// It automatically detects whether the file is ASCII or binary format
func Parse(filename string) (geometry.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return geometry.Mesh{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return geometry.Mesh{}, fmt.Errorf("failed to stat file: %w", err)
	}
	return Read(file, info.Size())
}

// Read decodes STL data. size is the total byte length when known, or -1.
func Read(reader io.Reader, size int64) (geometry.Mesh, error) {
	buffered := bufio.NewReader(reader)
	header, err := buffered.Peek(headerSize + 4)
	if err != nil && len(header) < len(asciiKeyword) {
		return geometry.Mesh{}, fmt.Errorf("failed to read file header: %w", err)
	}

	if looksASCII(header, size) {
		return parseASCII(buffered)
	}
	return parseBinary(buffered)
}

// Binary files may also start with "solid", so trust the size when it matches the facet count
func looksASCII(header []byte, size int64) bool {
	if !bytes.HasPrefix(header, []byte(asciiKeyword)) {
		return false
	}
	if size > 0 && len(header) >= headerSize+4 {
		count := binary.LittleEndian.Uint32(header[headerSize:])
		if int64(headerSize+4)+int64(count)*facetSize == size {
			return false
		}
	}
	return true
}

// parseASCII parses an ASCII STL stream
func parseASCII(reader io.Reader) (geometry.Mesh, error) {
	scanner := bufio.NewScanner(reader)
	mesh := geometry.Mesh{}
	var facet []geometry.Vector3

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				mesh.Name = strings.Join(fields[1:], " ")
			}

		case "vertex":
			if len(fields) < 4 {
				return geometry.Mesh{}, fmt.Errorf("malformed vertex line %q", scanner.Text())
			}
			v, err := parseVertex(fields[1:4])
			if err != nil {
				return geometry.Mesh{}, err
			}
			facet = append(facet, v)

		case "endfacet":
			// Facets with more than three vertices are not valid STL; keep only complete triangles
			if len(facet) == 3 {
				mesh.Positions = append(mesh.Positions, facet...)
			}
			facet = facet[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return geometry.Mesh{}, fmt.Errorf("error reading ASCII STL: %w", err)
	}
	return mesh, nil
}

func parseVertex(fields []string) (geometry.Vector3, error) {
	var xyz [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geometry.Vector3{}, fmt.Errorf("invalid vertex coordinate %q: %w", f, err)
		}
		xyz[i] = v
	}
	return geometry.Vector3FromArray(xyz), nil
}

// binaryFacet mirrors the 50-byte on-disk record
type binaryFacet struct {
	Normal    [3]float32
	Vertices  [3][3]float32
	Attribute uint16
}

// parseBinary parses a binary STL stream
func parseBinary(reader io.Reader) (geometry.Mesh, error) {
	mesh := geometry.Mesh{}

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(reader, header); err != nil {
		return geometry.Mesh{}, fmt.Errorf("failed to read header: %w", err)
	}
	mesh.Name = strings.TrimSpace(string(bytes.TrimRight(header, "\x00")))

	var triangleCount uint32
	if err := binary.Read(reader, binary.LittleEndian, &triangleCount); err != nil {
		return geometry.Mesh{}, fmt.Errorf("failed to read triangle count: %w", err)
	}

	mesh.Positions = make([]geometry.Vector3, 0, 3*int(min(triangleCount, 1<<20)))
	for i := uint32(0); i < triangleCount; i++ {
		var facet binaryFacet
		if err := binary.Read(reader, binary.LittleEndian, &facet); err != nil {
			return geometry.Mesh{}, fmt.Errorf("failed to read triangle %d: %w", i, err)
		}
		for _, v := range facet.Vertices {
			mesh.Positions = append(mesh.Positions,
				geometry.NewVector3(float64(v[0]), float64(v[1]), float64(v[2])))
		}
	}

	return mesh, nil
}

// Write encodes the mesh as binary STL
func Write(w io.Writer, mesh geometry.Mesh) error {
	header := make([]byte, headerSize)
	copy(header, mesh.Name)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	count := uint32(mesh.TriangleCount())
	if err := binary.Write(w, binary.LittleEndian, count); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}
	for i := 0; i < int(count); i++ {
		tri := mesh.Triangle(i)
		facet := binaryFacet{Normal: toFloat32(tri.Normal)}
		facet.Vertices = [3][3]float32{toFloat32(tri.V1), toFloat32(tri.V2), toFloat32(tri.V3)}
		if err := binary.Write(w, binary.LittleEndian, &facet); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}
	return nil
}

func toFloat32(v geometry.Vector3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
