// Command samplesite writes a small resource root to try the server with.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

var (
	dir  = flag.String("dir", "site", "directory to write the site into")
	size = flag.String("size", "300x200", "image size, WIDTHxHEIGHT")
)

const indexPage = `<html lang="en"><head><title>Index</title></head><body>
<h3>Served by <cs371server></h3>
<p><a href="page.html">page</a></p>
<img src="logo.png"> <img src="logo.jpeg"> <img src="logo.gif">
</body></html>
`

const markerPage = `<html lang="en"><head><title>Page</title></head><body>
<p>Hello <cs371server> on <cs371date></p>
<p>Today is <cs371date>, still <cs371date>.</p>
</body></html>
`

// Write creates the site under root.
func Write(root string, width, height int) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	pages := map[string]string{
		"index.html": indexPage,
		"page.html":  markerPage,
	}
	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
			return err
		}
	}
	m := gradient(width, height)
	for _, format := range []string{"png", "jpeg", "gif"} {
		if err := writeImage(filepath.Join(root, "logo."+format), format, m); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	flag.Parse()
	w, h, err := parseSize(*size)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := Write(*dir, w, h); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *dir)
}
