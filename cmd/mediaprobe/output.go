package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

const (
	formatAuto  = "auto"
	formatTable = "table"
	formatJSON  = "json"
)

const absent = "-"

func validateFormat(value string) error {
	switch value {
	case formatAuto, formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported --format %q (want auto, table or json)", value)
	}
}

// outputFormat resolves auto to table on a terminal and JSON otherwise.
func outputFormat(ctx *commandContext, cmd *cobra.Command) string {
	format := ctx.format()
	if format != formatAuto {
		return format
	}
	if isTerminal(cmd.OutOrStdout()) {
		return formatTable
	}
	return formatJSON
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatOption[T any](value mo.Option[T], render func(T) string) string {
	v, ok := value.Get()
	if !ok {
		return absent
	}
	return render(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt[T ~int64 | ~uint32 | ~uint64](v T) string {
	return fmt.Sprint(v)
}

func identity(s string) string {
	return s
}
