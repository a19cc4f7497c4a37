package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"ndksize/internal/elfx"
	"ndksize/internal/sizes"
)

// sectionRow describes one section and the accounting bucket it lands in.
// The bucket column is the observability surface for the name-based
// .strtab/.rodata heuristics.
type sectionRow struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Size   uint64 `json:"size"`
	Bucket string `json:"bucket,omitempty"`
}

func cmdSections(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sections", flag.ExitOnError)
	lib := fs.String("lib", "", "path to the .so file")
	jsonOut := fs.Bool("json", false, "output as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *lib == "" {
		return fmt.Errorf("--lib is required")
	}

	ef, err := elfx.Open(*lib)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer ef.Close()

	fmt.Fprintf(os.Stderr, "ELF: %s, %d bytes, %d sections\n",
		ef.Architecture(), ef.FileSize(), len(ef.ELF.Sections))

	rows := make([]sectionRow, 0, len(ef.ELF.Sections))
	for i, s := range ef.ELF.Sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows = append(rows, sectionRow{
			Index:  i,
			Name:   s.Name,
			Type:   s.Type.String(),
			Size:   s.Size,
			Bucket: sizes.Bucket(s),
		})
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Printf("%-4s %-24s %-20s %12s  %s\n", "IDX", "NAME", "TYPE", "SIZE", "BUCKET")
	for _, r := range rows {
		fmt.Printf("%-4d %-24s %-20s %12d  %s\n", r.Index, r.Name, r.Type, r.Size, r.Bucket)
	}
	return nil
}
