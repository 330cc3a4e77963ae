package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/modpanel/cli/cmd"
	"github.com/modpanel/cli/internal/version"
	"github.com/spf13/cobra/doc"
)

const fmTemplate = `---
date: %s
title: "%s"
slug: %s
url: %s
---

`

func main() {
	var (
		outputDir       = flag.String("dir", "./docs", "Output directory for generated documentation")
		format          = flag.String("format", "markdown", "Output format: markdown or man")
		withFrontMatter = flag.Bool("frontmatter", false, "Add Hugo front matter to generated markdown files")
		baseURL         = flag.String("baseurl", "/commands", "Base URL for command links (used with front matter)")
	)
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	// Docs must not depend on the local config or credential files
	rootCmd, err := cmd.RootCommand(false)
	if err != nil {
		log.Fatalf("Failed to build command tree: %v", err)
	}
	rootCmd.DisableAutoGenTag = true

	var pattern string
	switch *format {
	case "man":
		pattern = "*.1"
		err = doc.GenManTree(rootCmd, &doc.GenManHeader{
			Title:   "MODPANEL",
			Section: "1",
			Source:  "modpanel " + version.Version,
		}, *outputDir)
	case "markdown":
		pattern = "*.md"
		if *withFrontMatter {
			filePrepender := func(filename string) string {
				now := time.Now().Format(time.RFC3339)
				name := filepath.Base(filename)
				base := strings.TrimSuffix(name, path.Ext(name))
				url := *baseURL + "/" + strings.ToLower(base) + "/"
				title := strings.ReplaceAll(base, "_", " ")
				return fmt.Sprintf(fmTemplate, now, title, base, url)
			}

			linkHandler := func(name string) string {
				base := strings.TrimSuffix(name, path.Ext(name))
				return *baseURL + "/" + strings.ToLower(base) + "/"
			}

			err = doc.GenMarkdownTreeCustom(rootCmd, *outputDir, filePrepender, linkHandler)
		} else {
			err = doc.GenMarkdownTree(rootCmd, *outputDir)
		}
	default:
		log.Fatalf("Unknown format %q (want markdown or man)", *format)
	}

	if err != nil {
		log.Fatalf("Failed to generate %s docs: %v", *format, err)
	}

	files, err := filepath.Glob(filepath.Join(*outputDir, pattern))
	if err == nil {
		log.Printf("Generated %d %s files in %s", len(files), *format, *outputDir)
	}
}
