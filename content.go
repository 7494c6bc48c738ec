package main

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var defaultContent = ContentDescriptor{MIMEType: "text/html", Binary: false}

var contentTypes = map[string]ContentDescriptor{
	"html": {"text/html", false},
	"gif":  {"image/gif", true},
	"jpeg": {"image/jpeg", true},
	"png":  {"image/png", true},
	"ico":  {"image/x-icon", true},
}

type encodeFunc func(io.Writer, image.Image) error

// Binary types missing here are sent as raw bytes.
var imageEncoders = map[string]encodeFunc{
	"png": png.Encode,
	"jpeg": func(w io.Writer, m image.Image) error {
		return jpeg.Encode(w, m, nil)
	},
	"gif": func(w io.Writer, m image.Image) error {
		return gif.Encode(w, m, nil)
	},
}

// extension returns the lower-cased text after the last '.' of the final
// path segment, or "" when there is none.
func extension(p string) string {
	base := p[strings.LastIndexByte(p, '/')+1:]
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// DescribeContent maps a path to its MIME type using the extension table.
func DescribeContent(p string) ContentDescriptor {
	if cd, ok := contentTypes[extension(p)]; ok {
		return cd
	}
	return defaultContent
}

// Resolver decides status and body for a request against a resource root.
type Resolver struct {
	root string
}

func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Locate maps a request path to a file under the root. The path is cleaned
// as if rooted at "/"; ok is false when the joined result still lies outside
// the root, as happens with '\' separators on Windows.
func (rs *Resolver) Locate(raw string) (file string, ok bool) {
	cleaned := path.Clean("/" + raw)
	file = filepath.Join(rs.root, filepath.FromSlash(cleaned))
	rel, err := filepath.Rel(rs.root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return file, true
}

// Resolve never writes anything. Any failure that can be detected here
// turns into a not-found response, so the header always matches the body.
func (rs *Resolver) Resolve(req *Request) (*Response, error) {
	if !req.HasPath {
		return &Response{Status: StatusOK, Content: defaultContent, kind: bodyGeneric}, nil
	}

	cd := DescribeContent(req.Path)
	notFound := &Response{Status: StatusNotFound, Content: cd, kind: bodyNotFound}

	file, ok := rs.Locate(req.Path)
	if !ok {
		return notFound, nil
	}
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return notFound, nil
		}
		return notFound, fmt.Errorf("open %s: %w", file, err)
	}
	fi, err := f.Stat()
	if err != nil || !fi.Mode().IsRegular() {
		f.Close()
		return notFound, err
	}

	res := &Response{Status: StatusOK, Content: cd}
	enc, ok := imageEncoders[extension(req.Path)]
	switch {
	case !cd.Binary:
		res.kind = bodyText
		res.body = f
	case !ok:
		res.kind = bodyRaw
		res.body = f
	default:
		defer f.Close()
		b, err := reencodeImage(f, enc)
		if err != nil {
			return notFound, fmt.Errorf("%s: %w", file, err)
		}
		res.kind = bodyImage
		res.image = b
	}
	return res, nil
}

func reencodeImage(r io.Reader, enc encodeFunc) ([]byte, error) {
	m, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	buf := new(bytes.Buffer)
	if err := enc(buf, m); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
