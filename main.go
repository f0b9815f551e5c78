/**
 * Copyright 2022 kmeaw
 *
 * Licensed under the GNU Affero General Public License (AGPL).
 *
 * This program is free software: you can redistribute it and/or modify it
 * under the terms of the GNU Affero General Public License as published by the
 * Free Software Foundation, version 3 of the License.
 *
 * This program is distributed in the hope that it will be useful, but WITHOUT
 * ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
 * FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License
 * for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"huffpress/textcodec"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `usage: %s [flags] serve
       %s [flags] compress|decompress|compress-image|decompress-image <file>...
       %s [flags] codes <file>
flags:
`, os.Args[0], os.Args[0], os.Args[0])
	flag.PrintDefaults()
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command(
			"rundll32",
			"url.dll,FileProtocolHandler",
			url,
		).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	}
	if err != nil {
		log.Printf("cannot open browser: %s", err)
	}
}

func serve(config *Config, open bool) {
	policy := NewPolicy()
	if err := policy.LoadScript(config.Policy); err != nil {
		log.Fatalf("cannot load upload policy: %s", err)
	}

	if err := os.MkdirAll(config.UploadDir, 0777); err != nil {
		log.Fatalf("cannot create upload directory: %s", err)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	if err := config.InitAssetsTemplates(r); err != nil {
		log.Fatalf("cannot init templates: %s", err)
	}

	s := &Server{
		Config:  config,
		Policy:  policy,
		History: NewHistory(config.HistorySize),
	}
	s.Routes(r)

	l, err := net.Listen("tcp", config.Listen)
	if err != nil {
		log.Panic(err)
	}

	url := "http://" + l.Addr().String() + "/"
	log.Printf("Huffman Compression API running at %s", url)
	if open {
		go openBrowser(url)
	}
	log.Panic(r.RunListener(l))
}

func codes(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	a, err := textcodec.Analyze(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	p := message.NewPrinter(language.English) // For commas between thousands
	p.Printf("%-8s %12s  %s\n", "symbol", "count", "code")
	for _, e := range a.Entries {
		sym := strconv.QuoteRune(rune(e.Symbol))
		if e.Symbol >= 0x80 {
			sym = fmt.Sprintf("%#02x", e.Symbol)
		}
		p.Printf("%-8s %12d  %s\n", sym, e.Count, e.Code)
	}
	p.Printf("%d symbols, %d distinct, %d payload bits, %d tree bytes\n", a.TotalCount, len(a.Entries), a.EncodedBits, a.TreeBytes)
	return nil
}

func main() {
	if len(os.Args) > 0 {
		dir, _ := filepath.Split(os.Args[0])
		if dir != "" {
			if _, err := os.Stat(filepath.Join(dir, "templates")); err == nil {
				err = os.Chdir(dir)
				if err != nil {
					log.Fatalf("cannot cd into %q: %s", dir, err)
				}
			}
		}
	}

	config := &Config{}
	err := config.Init()
	if err != nil {
		log.Fatalf("cannot init config system: %s", err)
	}
	err = config.Load()
	if err != nil {
		log.Fatalf("error loading config file: %s", err)
	}

	flag.Usage = usage
	listen := flag.String("listen", config.Listen, "address to serve on")
	dir := flag.String("dir", config.UploadDir, "directory for uploads and results")
	jobs := flag.Int("j", config.Jobs, "files processed concurrently")
	outDir := flag.String("o", "", "output directory, defaults to the directory of each input")
	remote := flag.String("remote", "", "URL of a huffpress server to run the operations on")
	open := flag.Bool("open", false, "open the web interface in a browser")
	flag.Parse()

	config.Listen = *listen
	config.UploadDir = *dir
	config.Jobs = *jobs

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	switch args[0] {
	case "serve":
		serve(config, *open)
		return

	case "codes":
		if len(args) != 2 {
			flag.Usage()
			os.Exit(2)
		}
		if err := codes(args[1]); err != nil {
			log.Fatal(err)
		}
		return
	}

	op, err := ParseOperation(args[0])
	if err != nil {
		flag.Usage()
		os.Exit(2)
	}
	if len(args) < 2 {
		log.Fatalf("%s: no files given", op)
	}

	b := &Batch{
		Jobs:   config.Jobs,
		OutDir: *outDir,
		Log:    os.Stdout,
	}
	if *remote != "" {
		client, err := NewClient(*remote)
		if err != nil {
			log.Fatal(err)
		}
		if err := client.Health(context.Background()); err != nil {
			log.Fatalf("server is not available: %s", err)
		}
		b.Runner = client
	}

	if _, err := b.Run(context.Background(), op, args[1:]); err != nil {
		log.Fatal(err)
	}
}

// vim: ai:ts=8:sw=8:noet:syntax=go
