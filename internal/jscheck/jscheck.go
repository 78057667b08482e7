// Package jscheck runs the manual Maps JavaScript API check: a throwaway
// HTML page loads a map with the key and the user confirms visually
// whether it renders.
package jscheck

import (
	"bufio"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"
)

var page = template.Must(template.New("jsapi").Parse(`<!DOCTYPE html>
<html>
<head>
<script src="https://maps.googleapis.com/maps/api/js?key={{.Key}}&callback=initMap&libraries=&v=weekly" defer></script>
<style type="text/css">#map{height:100%;}html,body{height:100%;margin:0;padding:0;}</style>
<script>let map;function initMap(){map=new google.maps.Map(document.getElementById("map"),{center:{lat:-34.397,lng:150.644},zoom:8,});}</script>
</head>
<body><div id="map"></div></body>
</html>
`))

// Session carries the streams used for the prompts. An In that is already
// a *bufio.Reader is read directly, so earlier prompts on the same stream
// don't swallow the answers.
type Session struct {
	In   io.Reader
	Out  io.Writer
	Path string
}

// Run asks whether to do the check and, if so, writes the page, waits for
// the user and removes it again. EOF on input is treated as "no".
func (s *Session) Run(key string) error {
	in, ok := s.In.(*bufio.Reader)
	if !ok {
		in = bufio.NewReader(s.In)
	}
	fmt.Fprint(s.Out, "Do you want to conduct manual tests for Javascript API? (Will need manual confirmation + file creation) (Y/N): ")
	answer, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading answer: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(answer), "y") {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.Out)
		}
		return nil
	}

	if err := Write(s.Path, key); err != nil {
		return err
	}
	defer os.Remove(s.Path)

	fmt.Fprintf(s.Out, "%s file is created for manual confirmation. Open it at your browser and observe whether the map is successfully loaded or not.\n", s.Path)
	fmt.Fprintln(s.Out, "If you see 'Sorry! Something went wrong.' error on the page, it means that API key is not allowed to be used at JavaScript API.")
	fmt.Fprintf(s.Out, "Press enter again for deletion of %s file automatically after manual confirmation is conducted.", s.Path)
	if _, err := in.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("waiting for confirmation: %w", err)
	}
	fmt.Fprintln(s.Out)

	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", s.Path, err)
	}
	return nil
}

// Write renders the test page for key into path.
func Write(path, key string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := page.Execute(f, struct{ Key string }{key}); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
