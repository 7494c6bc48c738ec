package main

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestDescribeContent(t *testing.T) {
	cases := []struct {
		path   string
		mime   string
		binary bool
	}{
		{"/index.html", "text/html", false},
		{"/INDEX.HTML", "text/html", false},
		{"/logo.png", "image/png", true},
		{"/a.b/logo.gif", "image/gif", true},
		{"/photo.jpeg", "image/jpeg", true},
		{"/favicon.ico", "image/x-icon", true},
		{"/archive.tar.png", "image/png", true},
		{"/notes.txt", "text/html", false},
		{"/README", "text/html", false},
		{"/dir.png/README", "text/html", false},
		{"/trailing.", "text/html", false},
	}
	for _, c := range cases {
		cd := DescribeContent(c.path)
		ExpectEqual(t, c.mime, cd.MIMEType)
		if cd.Binary != c.binary {
			t.Errorf("%s: Binary = %v, want %v", c.path, cd.Binary, c.binary)
		}
	}
}

func TestLocate(t *testing.T) {
	root := filepath.FromSlash("/srv/www")
	rs := NewResolver(root)
	cases := map[string]string{
		"/index.html":           "/srv/www/index.html",
		"/a/b/../c.html":        "/srv/www/a/c.html",
		"/../../etc/passwd":     "/srv/www/etc/passwd",
		"/..":                   "/srv/www",
		"//double//slash.html":  "/srv/www/double/slash.html",
		"relative/../../x.html": "/srv/www/x.html",
	}
	for in, want := range cases {
		file, ok := rs.Locate(in)
		if !ok {
			t.Errorf("%s: not located", in)
		}
		ExpectEqual(t, filepath.FromSlash(want), file)
	}
}

func TestLocateBackslash(t *testing.T) {
	root := t.TempDir()
	rs := NewResolver(root)
	for _, in := range []string{`/..\..\secret.html`, `/a\..\..\..\b.html`, `\..\x.html`} {
		file, ok := rs.Locate(in)
		if runtime.GOOS == "windows" {
			if ok {
				t.Errorf("%s: located outside the root as %s", in, file)
			}
			continue
		}
		// '\' is an ordinary file name character here
		if !ok {
			t.Errorf("%s: not located", in)
			continue
		}
		rel, err := filepath.Rel(root, file)
		if err != nil || strings.HasPrefix(rel, "..") {
			t.Errorf("%s: %s is outside %s", in, file, root)
		}
	}

	res, err := rs.Resolve(&Request{Path: `/..\..\secret.html`, HasPath: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusNotFound {
		t.Errorf("got status %s, want 404", res.Status)
	}
}

func writePNG(t *testing.T, file string) image.Image {
	m := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			m.Set(x, y, color.NRGBA{uint8(x * 16), uint8(y * 32), uint8(x ^ y), 255})
		}
	}
	f, err := os.Create(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, m); err != nil {
		t.Fatal(err)
	}
	return m
}

func writeImageAs(t *testing.T, file string, m image.Image, enc encodeFunc) {
	f, err := os.Create(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := enc(f, m); err != nil {
		t.Fatal(err)
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "page.html"), []byte("<p>hi</p>\n"), 0644)
	os.WriteFile(filepath.Join(root, "favicon.ico"), []byte{0, 0, 1, 0}, 0644)
	os.WriteFile(filepath.Join(root, "broken.png"), []byte("not an image"), 0644)
	os.Mkdir(filepath.Join(root, "sub.html"), 0755)
	logo := writePNG(t, filepath.Join(root, "logo.png"))
	writeImageAs(t, filepath.Join(root, "logo.jpeg"), logo, func(w io.Writer, m image.Image) error {
		return jpeg.Encode(w, m, nil)
	})
	writeImageAs(t, filepath.Join(root, "logo.gif"), logo, func(w io.Writer, m image.Image) error {
		return gif.Encode(w, m, nil)
	})
	rs := NewResolver(root)

	convey.Convey("Given a resource root", t, func() {
		convey.Convey("A request without a path gets the generic page", func() {
			res, err := rs.Resolve(&Request{})
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Status, convey.ShouldEqual, StatusOK)
			convey.So(res.Content.MIMEType, convey.ShouldEqual, "text/html")
			convey.So(res.kind, convey.ShouldEqual, bodyGeneric)
		})

		convey.Convey("An existing html file is a text body", func() {
			res, err := rs.Resolve(&Request{Path: "/page.html", HasPath: true})
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Status, convey.ShouldEqual, StatusOK)
			convey.So(res.kind, convey.ShouldEqual, bodyText)
			convey.So(res.body, convey.ShouldNotBeNil)
			res.body.Close()
		})

		convey.Convey("A missing file is not found", func() {
			res, err := rs.Resolve(&Request{Path: "/missing.html", HasPath: true})
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Status, convey.ShouldEqual, StatusNotFound)
			convey.So(res.kind, convey.ShouldEqual, bodyNotFound)
		})

		convey.Convey("A directory is not found", func() {
			res, err := rs.Resolve(&Request{Path: "/sub.html", HasPath: true})
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Status, convey.ShouldEqual, StatusNotFound)
		})

		convey.Convey("A png is re-encoded before the header", func() {
			res, err := rs.Resolve(&Request{Path: "/logo.png", HasPath: true})
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Status, convey.ShouldEqual, StatusOK)
			convey.So(res.kind, convey.ShouldEqual, bodyImage)
			convey.So(len(res.image), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("A jpeg and a gif are re-encoded in their own format", func() {
			for _, name := range []string{"jpeg", "gif"} {
				res, err := rs.Resolve(&Request{Path: "/logo." + name, HasPath: true})
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Status, convey.ShouldEqual, StatusOK)
				convey.So(res.Content.MIMEType, convey.ShouldEqual, "image/"+name)
				convey.So(res.kind, convey.ShouldEqual, bodyImage)

				cfg, format, err := image.DecodeConfig(bytes.NewReader(res.image))
				convey.So(err, convey.ShouldBeNil)
				convey.So(format, convey.ShouldEqual, name)
				convey.So(cfg.Width, convey.ShouldEqual, logo.Bounds().Dx())
				convey.So(cfg.Height, convey.ShouldEqual, logo.Bounds().Dy())
			}
		})

		convey.Convey("An icon is sent as raw bytes", func() {
			res, err := rs.Resolve(&Request{Path: "/favicon.ico", HasPath: true})
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Content.MIMEType, convey.ShouldEqual, "image/x-icon")
			convey.So(res.kind, convey.ShouldEqual, bodyRaw)
			res.body.Close()
		})

		convey.Convey("An undecodable image turns into not found", func() {
			res, err := rs.Resolve(&Request{Path: "/broken.png", HasPath: true})
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(res.Status, convey.ShouldEqual, StatusNotFound)
			convey.So(res.Content.MIMEType, convey.ShouldEqual, "image/png")
			convey.So(res.kind, convey.ShouldEqual, bodyNotFound)
		})
	})
}
