// Command nblint validates query-catalog and notebooklet YAML documents.
//
//	nblint [-kind auto|catalog|notebooklet] [-dump] [-watch] file...
//
// Each file is parsed and validated; findings are logged with their dotted
// document path. The exit code is 1 when any document has errors. With
// -watch, nblint keeps running and re-validates a file whenever it changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nbcatalog/nbcatalog/catalog"
	"github.com/nbcatalog/nbcatalog/notebooklet"
	"github.com/nbcatalog/nbcatalog/reload"
	"github.com/nbcatalog/nbcatalog/schema"
	"github.com/nbcatalog/nbcatalog/yamldoc"
)

func main() {
	kindFlag := flag.String("kind", "auto", "document kind: auto, catalog or notebooklet")
	dumpFlag := flag.Bool("dump", false, "print each normalized document to stdout")
	watchFlag := flag.Bool("watch", false, "keep running and re-validate files on change")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: nblint [-kind auto|catalog|notebooklet] [-dump] [-watch] file...")
		os.Exit(2)
	}

	failed := false
	var specs []*notebooklet.Spec
	for _, path := range files {
		ok, spec := lintFile(path, *kindFlag, *dumpFlag)
		if !ok {
			failed = true
		}
		if spec != nil {
			specs = append(specs, spec)
		}
	}

	// Cross-document checks: duplicate notebooklet names are errors,
	// duplicate descriptions a copy-paste-drift warning.
	if len(specs) > 1 {
		_, res := notebooklet.NewIndex(specs...)
		logIssues("", res)
		if !res.Valid() {
			failed = true
		}
	}

	if !*watchFlag {
		if failed {
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	for _, path := range files {
		path := path
		go func() {
			err := reload.Watch(ctx, path, func(changed string) error {
				if ok, _ := lintFile(changed, *kindFlag, *dumpFlag); !ok {
					return fmt.Errorf("document has validation errors")
				}
				return nil
			})
			if err != nil {
				slog.Error("watcher stopped", "path", path, "err", err)
			}
		}()
	}
	<-ctx.Done()
}

// lintFile validates one document. It returns whether the document is clean
// and, for notebooklet specs, the loaded spec for cross-document checks.
func lintFile(path, kind string, dump bool) (bool, *notebooklet.Spec) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("read failed", "path", path, "err", err)
		return false, nil
	}

	doc, err := yamldoc.Parse(data)
	if err != nil {
		slog.Error("parse failed", "path", path, "err", err)
		return false, nil
	}

	if kind == "auto" {
		kind = detectKind(doc)
		if kind == "" {
			slog.Error("cannot detect document kind — pass -kind", "path", path)
			return false, nil
		}
	}

	if dump {
		out, err := yamldoc.Encode(doc)
		if err != nil {
			slog.Error("encode failed", "path", path, "err", err)
			return false, nil
		}
		os.Stdout.Write(out)
	}

	switch kind {
	case "catalog":
		c, res, err := catalog.Decode(data)
		if err != nil {
			slog.Error("validation aborted", "path", path, "err", err)
			return false, nil
		}
		logIssues(path, res)
		if res.Valid() {
			ix := catalog.NewQueryIndex(c)
			slog.Info("catalog ok", "path", path, "queries", ix.Len())
		}
		return res.Valid(), nil

	case "notebooklet":
		s, res, err := notebooklet.Decode(data)
		if err != nil {
			slog.Error("validation aborted", "path", path, "err", err)
			return false, nil
		}
		logIssues(path, res)
		if res.Valid() {
			slog.Info("notebooklet ok", "path", path,
				"name", s.Metadata.Name, "sections", len(s.Output))
		}
		return res.Valid(), s

	default:
		slog.Error("unknown -kind value", "kind", kind)
		return false, nil
	}
}

// detectKind guesses the document kind from its top-level keys.
func detectKind(doc *yamldoc.Document) string {
	root, ok := doc.Root.(*yamldoc.Mapping)
	if !ok {
		return ""
	}
	if root.Has("sources") {
		return "catalog"
	}
	if root.Has("output") {
		return "notebooklet"
	}
	return ""
}

func logIssues(path string, res *schema.Result) {
	for _, e := range res.Errors {
		slog.Error("validation error", "path", path, "at", e.Path, "msg", e.Message)
	}
	for _, w := range res.Warnings {
		slog.Warn("validation warning", "path", path, "at", w.Path, "msg", w.Message)
	}
}
